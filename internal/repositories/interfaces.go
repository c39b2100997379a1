// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"time"

	"jobportal/internal/access"
	"jobportal/internal/jobquery"
	"jobportal/internal/models"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// JobRepository defines the contract for job data operations
type JobRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id int64, scope access.JobFilter) (*models.Job, error)
	Delete(ctx context.Context, id int64) (bool, error)

	// Search and listing
	Search(ctx context.Context, q jobquery.Query, scope access.JobFilter) (*models.PaginatedResponse[*models.Job], error)

	// Filter side data
	DistinctCompanies(ctx context.Context) ([]string, error)
	DistinctLocations(ctx context.Context) ([]string, error)
	TagStrings(ctx context.Context) ([]string, error)

	// Analytics
	CountByStatus(ctx context.Context, scope access.JobFilter) (map[models.JobStatus]int64, error)
	CountByMonth(ctx context.Context, since time.Time) (map[time.Time]int64, error)
}

// ApplicationRepository defines the contract for application data operations
type ApplicationRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id int64, scope access.ApplicationFilter) (*models.Application, error)
	Delete(ctx context.Context, id int64) (bool, error)

	// Listing
	List(ctx context.Context, filter ApplicationListFilter, scope access.ApplicationFilter) (*models.PaginatedResponse[*models.Application], error)

	// Lifecycle
	UpdateStatus(ctx context.Context, update StatusUpdate, scope access.ApplicationFilter) (bool, error)
	MarkViewed(ctx context.Context, id int64, at time.Time) (bool, error)

	// Analytics
	CountByStatus(ctx context.Context, scope access.ApplicationFilter) (map[models.ApplicationStatus]int64, error)
}

// UserRepository defines the contract for account data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (bool, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

// ===============================
// SUPPORTING TYPES
// ===============================

// ApplicationListFilter narrows an application listing
type ApplicationListFilter struct {
	Keyword  string
	Status   models.ApplicationStatus
	JobID    int64
	Page     int
	PageSize int
}

// StatusUpdate is one lifecycle mutation of an application
type StatusUpdate struct {
	ID       int64
	Status   models.ApplicationStatus
	Feedback *string
	At       time.Time
}
