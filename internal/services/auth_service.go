package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/models"
	"jobportal/internal/repositories"
	"jobportal/internal/validation"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// tokenClaims are the JWT claims carried by a session token
type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	users  repositories.UserRepository
	config config.AuthConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(users repositories.UserRepository, cfg config.AuthConfig, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	if cfg.JWTExpiry <= 0 {
		cfg.JWTExpiry = 24 * time.Hour
	}
	return &authService{
		users:  users,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates an employer or applicant account
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, fromValidation(err)
	}

	role, _ := models.ParseRole(req.Role)
	email := models.NormalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, NewInternalError("failed to register account", err)
	}
	if exists {
		return nil, NewConflictError("an account with this email already exists", "EMAIL_TAKEN")
	}

	user, err := s.newUser(email, req.Password, role)
	if err != nil {
		return nil, NewInternalError("failed to register account", err)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, NewInternalError("failed to register account", err)
	}
	if !created {
		return nil, NewConflictError("an account with this email already exists", "EMAIL_TAKEN")
	}

	s.logger.Info("Account registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// Login checks credentials and issues a session token
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, fromValidation(err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewInternalError("failed to sign in", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, NewUnauthorizedError("invalid email or password")
	}

	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, NewInternalError("failed to sign in", err)
	}

	s.logger.Info("User signed in", zap.String("user_id", user.ID))

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// IssueToken signs an HS256 token for user
func (s *authService) IssueToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.JWTExpiry)

	claims := tokenClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.config.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseToken verifies a token and returns the actor it names
func (s *authService) ParseToken(token string) (*models.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.JWTIssuer))
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewUnauthorizedError("session expired")
		}
		return nil, NewUnauthorizedError("invalid session token")
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok || claims.Subject == "" {
		return nil, NewUnauthorizedError("invalid session token")
	}

	return &models.Actor{UserID: claims.Subject, Email: models.NormalizeEmail(claims.Email), Role: role}, nil
}

// SeedAdmin creates the configured admin account if it does not exist yet
func (s *authService) SeedAdmin(ctx context.Context) error {
	email := models.NormalizeEmail(s.config.AdminEmail)
	if email == "" || s.config.AdminPassword == "" {
		s.logger.Warn("Admin seed skipped: ADMIN_EMAIL or ADMIN_PASSWORD is empty")
		return nil
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		s.logger.Debug("Admin account already present", zap.String("email", email))
		return nil
	}

	user, err := s.newUser(email, s.config.AdminPassword, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to prepare admin account: %w", err)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	if created {
		s.logger.Info("Admin account seeded", zap.String("email", email))
	}

	return nil
}

func (s *authService) newUser(email, password string, role models.Role) (*models.User, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &models.User{
		ID:           id.String(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}, nil
}
