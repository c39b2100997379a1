package repositories

import (
	"context"
	"fmt"

	"jobportal/internal/database"
	"jobportal/internal/models"

	"go.uber.org/zap"
)

// userRepository implements UserRepository over PostgreSQL
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts an account. It reports false, without error, when the
// email is already registered.
func (r *userRepository) Create(ctx context.Context, user *models.User) (bool, error) {
	query := `
		INSERT INTO users (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING created_at`

	err := r.QueryRowContext(ctx, query, user.ID, user.Email, user.PasswordHash, string(user.Role)).
		Scan(&user.CreatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return false, nil
		}
		r.GetLogger().Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return false, fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Info("User created successfully",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return true, nil
}

// GetByID retrieves an account by id; a missing row is (nil, nil)
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByEmail retrieves an account by email; a missing row is (nil, nil)
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", models.NormalizeEmail(email))
}

func (r *userRepository) getOne(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf("SELECT id, email, password_hash, role, created_at FROM users WHERE %s = $1", column)

	var user models.User
	var role string
	err := r.QueryRowContext(ctx, query, value).Scan(&user.ID, &user.Email, &user.PasswordHash, &role, &user.CreatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	user.Role = models.Role(role)
	return &user, nil
}

// ExistsByEmail checks whether an account is registered under email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", models.NormalizeEmail(email)).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// CountByRole counts accounts per role
func (r *userRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	rows, err := r.QueryContext(ctx, "SELECT role, COUNT(*) FROM users GROUP BY role")
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Role]int64)
	for rows.Next() {
		var role string
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		counts[models.Role(role)] = count
	}

	return counts, rows.Err()
}
