// file: internal/repositories/job_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"jobportal/internal/access"
	"jobportal/internal/database"
	"jobportal/internal/jobquery"
	"jobportal/internal/models"

	"go.uber.org/zap"
)

const jobColumns = `
	j.id, j.title, j.company, j.location, j.description, j.salary, j.job_type, j.status,
	j.posted_date, j.expiry_date, j.company_logo_url, j.requirements, j.benefits,
	COALESCE(j.tags, ''), COALESCE(j.employer_id, '')`

var jobSortColumns = map[jobquery.SortKey]string{
	jobquery.SortDate:    "j.posted_date",
	jobquery.SortTitle:   "j.title",
	jobquery.SortCompany: "j.company",
	jobquery.SortSalary:  "j.salary",
}

var jobKeywordColumns = map[jobquery.Field]string{
	jobquery.FieldTitle:       "j.title",
	jobquery.FieldCompany:     "j.company",
	jobquery.FieldLocation:    "j.location",
	jobquery.FieldDescription: "j.description",
	jobquery.FieldTags:        "j.tags",
}

// jobRepository implements JobRepository over PostgreSQL
type jobRepository struct {
	*BaseRepository
}

// NewJobRepository creates a new instance of JobRepository
func NewJobRepository(db *database.Manager, logger *zap.Logger) JobRepository {
	return &jobRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a job posting and fills in its id
func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (
			title, company, location, description, salary, job_type, status,
			posted_date, expiry_date, company_logo_url, requirements, benefits, tags, employer_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	err := r.QueryRowContext(
		ctx, query,
		job.Title, job.Company, job.Location, job.Description, job.Salary, string(job.JobType), string(job.Status),
		job.PostedDate, job.ExpiryDate, job.CompanyLogoURL, job.Requirements, job.Benefits,
		nullIfEmpty(job.Tags), nullIfEmpty(job.EmployerID),
	).Scan(&job.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create job",
			zap.Error(err),
			zap.String("employer_id", job.EmployerID),
			zap.String("title", job.Title),
		)
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.GetLogger().Info("Job created successfully",
		zap.Int64("job_id", job.ID),
		zap.String("employer_id", job.EmployerID),
		zap.String("title", job.Title),
	)

	return nil
}

// GetByID retrieves a job visible under scope; a missing row is (nil, nil)
func (r *jobRepository) GetByID(ctx context.Context, id int64, scope access.JobFilter) (*models.Job, error) {
	where := &whereBuilder{}
	where.add("j.id = $%[1]d", id)
	where.addScope(func(arg int) (string, []interface{}) { return scope.Where("j", arg) })

	query := "SELECT" + jobColumns + " FROM jobs j" + where.sql()

	job, err := scanJob(r.QueryRowContext(ctx, query, where.args...))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job by ID: %w", err)
	}

	return job, nil
}

// Delete removes a job. Applications referencing it are left in place.
func (r *jobRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.ExecContext(ctx, "DELETE FROM jobs WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if rowsAffected > 0 {
		r.GetLogger().Info("Job deleted", zap.Int64("job_id", id))
	}

	return rowsAffected > 0, nil
}

// ===============================
// SEARCH
// ===============================

// Search returns one page of jobs matching q within scope, with the total
// count of all matching rows
func (r *jobRepository) Search(ctx context.Context, q jobquery.Query, scope access.JobFilter) (*models.PaginatedResponse[*models.Job], error) {
	countQuery, listQuery, countArgs, listArgs := buildJobSearch(q, scope)

	total, err := r.GetTotalCount(ctx, countQuery, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	jobs := make([]*models.Job, 0, q.PageSize)
	if int64(q.Offset()) < total {
		rows, err := r.QueryContext(ctx, listQuery, listArgs...)
		if err != nil {
			return nil, fmt.Errorf("failed to search jobs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			job, err := scanJob(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to scan job: %w", err)
			}
			jobs = append(jobs, job)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate jobs: %w", err)
		}
	}

	return &models.PaginatedResponse[*models.Job]{
		Data:       jobs,
		Pagination: models.NewPaginationMeta(q.Page, q.PageSize, total),
	}, nil
}

// buildJobSearch renders the count and page queries for a search. The scope
// predicate comes first so every other filter narrows an already scoped set.
func buildJobSearch(q jobquery.Query, scope access.JobFilter) (countQuery, listQuery string, countArgs, listArgs []interface{}) {
	where := &whereBuilder{}
	where.addScope(func(arg int) (string, []interface{}) { return scope.Where("j", arg) })

	if q.HasKeyword() {
		parts := make([]string, 0, len(q.KeywordFields))
		for _, f := range q.KeywordFields {
			if col, ok := jobKeywordColumns[f]; ok {
				parts = append(parts, col+" ILIKE $%[1]d")
			}
		}
		if len(parts) > 0 {
			where.add("("+strings.Join(parts, " OR ")+")", likePattern(q.Keyword))
		}
	}
	if q.Location != "" {
		where.add("j.location ILIKE $%[1]d", likePattern(q.Location))
	}
	if q.Company != "" {
		where.add("j.company ILIKE $%[1]d", likePattern(q.Company))
	}
	if q.Tag != "" {
		where.add("j.tags ILIKE $%[1]d", likePattern(q.Tag))
	}
	if q.JobType != "" {
		where.add("j.job_type = $%[1]d", string(q.JobType))
	}
	if q.MinSalary != nil {
		where.add("j.salary >= $%[1]d", *q.MinSalary)
	}
	if q.MaxSalary != nil {
		where.add("j.salary <= $%[1]d", *q.MaxSalary)
	}

	countQuery = "SELECT COUNT(*) FROM jobs j" + where.sql()

	column, ok := jobSortColumns[q.SortBy]
	if !ok {
		column = jobSortColumns[jobquery.SortDate]
	}
	direction := "DESC"
	if q.Ascending {
		direction = "ASC"
	}
	orderBy := fmt.Sprintf(" ORDER BY %s %s, j.id %s", column, direction, direction)

	page, listArgs := pageClause(where.args, q.PageSize, q.Offset())
	listQuery = "SELECT" + jobColumns + " FROM jobs j" + where.sql() + orderBy + page

	return countQuery, listQuery, where.args, listArgs
}

// ===============================
// FILTER SIDE DATA
// ===============================

// DistinctCompanies lists every company name, sorted
func (r *jobRepository) DistinctCompanies(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, "SELECT DISTINCT company FROM jobs ORDER BY company")
}

// DistinctLocations lists every location, sorted
func (r *jobRepository) DistinctLocations(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, "SELECT DISTINCT location FROM jobs ORDER BY location")
}

// TagStrings returns the raw, non-empty tag strings of every job
func (r *jobRepository) TagStrings(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, "SELECT tags FROM jobs WHERE tags IS NOT NULL AND tags <> ''")
}

func (r *jobRepository) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query values: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// ===============================
// ANALYTICS
// ===============================

// CountByStatus counts jobs per status within scope
func (r *jobRepository) CountByStatus(ctx context.Context, scope access.JobFilter) (map[models.JobStatus]int64, error) {
	where := &whereBuilder{}
	where.addScope(func(arg int) (string, []interface{}) { return scope.Where("j", arg) })

	query := "SELECT j.status, COUNT(*) FROM jobs j" + where.sql() + " GROUP BY j.status"

	rows, err := r.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.JobStatus]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		counts[models.JobStatus(status)] = count
	}

	return counts, rows.Err()
}

// CountByMonth counts jobs posted on or after since, keyed by the first
// instant of each month in UTC
func (r *jobRepository) CountByMonth(ctx context.Context, since time.Time) (map[time.Time]int64, error) {
	query := `
		SELECT date_trunc('month', posted_date AT TIME ZONE 'UTC') AS month, COUNT(*)
		FROM jobs
		WHERE posted_date >= $1
		GROUP BY month
		ORDER BY month`

	rows, err := r.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by month: %w", err)
	}
	defer rows.Close()

	counts := make(map[time.Time]int64)
	for rows.Next() {
		var month time.Time
		var count int64
		if err := rows.Scan(&month, &count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly count: %w", err)
		}
		m := month.UTC()
		counts[time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)] = count
	}

	return counts, rows.Err()
}

// ===============================
// HELPERS
// ===============================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	var jobType, status string

	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Location, &job.Description, &job.Salary, &jobType, &status,
		&job.PostedDate, &job.ExpiryDate, &job.CompanyLogoURL, &job.Requirements, &job.Benefits,
		&job.Tags, &job.EmployerID,
	)
	if err != nil {
		return nil, err
	}

	job.JobType = models.JobType(jobType)
	job.Status = models.JobStatus(status)
	return &job, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
