package repositories

import (
	"context"
	"fmt"
	"time"

	"jobportal/internal/access"
	"jobportal/internal/database"
	"jobportal/internal/models"

	"go.uber.org/zap"
)

const applicationColumns = `
	a.id, a.job_id, COALESCE(a.user_id, ''), a.applicant_name, a.applicant_email,
	COALESCE(a.resume_path, ''), a.cover_letter, a.phone_number, a.status, a.applied_on,
	a.last_updated, a.is_viewed, a.viewed_on, a.admin_feedback,
	COALESCE(j.title, ''), COALESCE(j.company, '')`

// Jobs are LEFT JOINed because deleting a job leaves its applications behind
const applicationFrom = " FROM applications a LEFT JOIN jobs j ON j.id = a.job_id"

// applicationRepository implements ApplicationRepository over PostgreSQL
type applicationRepository struct {
	*BaseRepository
}

// NewApplicationRepository creates a new instance of ApplicationRepository
func NewApplicationRepository(db *database.Manager, logger *zap.Logger) ApplicationRepository {
	return &applicationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts an application and fills in its id
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (
			job_id, user_id, applicant_name, applicant_email, resume_path, cover_letter,
			phone_number, status, applied_on, last_updated, is_viewed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err := r.QueryRowContext(
		ctx, query,
		app.JobID, nullIfEmpty(app.UserID), app.ApplicantName, app.ApplicantEmail, nullIfEmpty(app.ResumePath),
		app.CoverLetter, app.PhoneNumber, string(app.Status), app.AppliedOn, app.LastUpdated, app.IsViewed,
	).Scan(&app.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create application",
			zap.Error(err),
			zap.Int64("job_id", app.JobID),
			zap.String("user_id", app.UserID),
		)
		return fmt.Errorf("failed to create application: %w", err)
	}

	r.GetLogger().Info("Application created successfully",
		zap.Int64("application_id", app.ID),
		zap.Int64("job_id", app.JobID),
	)

	return nil
}

// GetByID retrieves an application visible under scope; a missing row is (nil, nil)
func (r *applicationRepository) GetByID(ctx context.Context, id int64, scope access.ApplicationFilter) (*models.Application, error) {
	where := &whereBuilder{}
	where.add("a.id = $%[1]d", id)
	where.addScope(func(arg int) (string, []interface{}) { return scope.Where("a", arg) })

	query := "SELECT" + applicationColumns + applicationFrom + where.sql()

	app, err := scanApplication(r.QueryRowContext(ctx, query, where.args...))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application by ID: %w", err)
	}

	return app, nil
}

// Delete removes an application row
func (r *applicationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.ExecContext(ctx, "DELETE FROM applications WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}

// List returns one page of applications within scope, newest first
func (r *applicationRepository) List(ctx context.Context, filter ApplicationListFilter, scope access.ApplicationFilter) (*models.PaginatedResponse[*models.Application], error) {
	where := buildApplicationWhere(filter, scope)

	total, err := r.GetTotalCount(ctx, "SELECT COUNT(*)"+applicationFrom+where.sql(), where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	apps := make([]*models.Application, 0, filter.PageSize)

	if int64(offset) < total {
		page, args := pageClause(where.args, filter.PageSize, offset)
		query := "SELECT" + applicationColumns + applicationFrom + where.sql() +
			" ORDER BY a.applied_on DESC, a.id DESC" + page

		rows, err := r.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to list applications: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			app, err := scanApplication(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to scan application: %w", err)
			}
			apps = append(apps, app)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate applications: %w", err)
		}
	}

	return &models.PaginatedResponse[*models.Application]{
		Data:       apps,
		Pagination: models.NewPaginationMeta(filter.Page, filter.PageSize, total),
	}, nil
}

func buildApplicationWhere(filter ApplicationListFilter, scope access.ApplicationFilter) *whereBuilder {
	where := &whereBuilder{}
	where.addScope(func(arg int) (string, []interface{}) { return scope.Where("a", arg) })

	if filter.Keyword != "" {
		where.add("(a.applicant_name ILIKE $%[1]d OR a.applicant_email ILIKE $%[1]d OR j.title ILIKE $%[1]d)",
			likePattern(filter.Keyword))
	}
	if filter.Status != "" {
		where.add("a.status = $%[1]d", string(filter.Status))
	}
	if filter.JobID > 0 {
		where.add("a.job_id = $%[1]d", filter.JobID)
	}

	return where
}

// UpdateStatus sets status, feedback and last-updated time on an application
// visible under scope. It reports false when no such row exists.
func (r *applicationRepository) UpdateStatus(ctx context.Context, update StatusUpdate, scope access.ApplicationFilter) (bool, error) {
	where := &whereBuilder{}
	where.add("a.id = $%[1]d", update.ID)
	where.addScope(func(arg int) (string, []interface{}) { return scope.Where("a", arg) })

	n := len(where.args)
	query := fmt.Sprintf("UPDATE applications a SET status = $%d, admin_feedback = $%d, last_updated = $%d",
		n+1, n+2, n+3) + where.sql()
	args := append(where.args, string(update.Status), update.Feedback, update.At)

	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update application status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}

// MarkViewed records the first employer view. It reports false when the
// application was already viewed, leaving viewed_on untouched.
func (r *applicationRepository) MarkViewed(ctx context.Context, id int64, at time.Time) (bool, error) {
	result, err := r.ExecContext(ctx,
		"UPDATE applications SET is_viewed = TRUE, viewed_on = $2 WHERE id = $1 AND is_viewed = FALSE",
		id, at,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark application viewed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}

// CountByStatus counts applications per status within scope
func (r *applicationRepository) CountByStatus(ctx context.Context, scope access.ApplicationFilter) (map[models.ApplicationStatus]int64, error) {
	where := &whereBuilder{}
	where.addScope(func(arg int) (string, []interface{}) { return scope.Where("a", arg) })

	query := "SELECT a.status, COUNT(*) FROM applications a" + where.sql() + " GROUP BY a.status"

	rows, err := r.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ApplicationStatus]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan application count: %w", err)
		}
		counts[models.ApplicationStatus(status)] = count
	}

	return counts, rows.Err()
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var status string

	err := row.Scan(
		&app.ID, &app.JobID, &app.UserID, &app.ApplicantName, &app.ApplicantEmail,
		&app.ResumePath, &app.CoverLetter, &app.PhoneNumber, &status, &app.AppliedOn,
		&app.LastUpdated, &app.IsViewed, &app.ViewedOn, &app.AdminFeedback,
		&app.JobTitle, &app.JobCompany,
	)
	if err != nil {
		return nil, err
	}

	app.Status = models.ApplicationStatus(status)
	return &app, nil
}
