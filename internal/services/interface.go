package services

import (
	"context"
	"time"

	"jobportal/internal/jobquery"
	"jobportal/internal/models"
)

// JobService handles job search, posting and removal
type JobService interface {
	Search(ctx context.Context, criteria jobquery.Criteria) (*JobSearchResult, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	PostJob(ctx context.Context, actor *models.Actor, req *PostJobRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, actor *models.Actor, id int64) error
	ListJobs(ctx context.Context, actor *models.Actor, req ListJobsRequest) (*models.PaginatedResponse[*models.Job], error)
	Facets(ctx context.Context) (*jobquery.Facets, error)
}

// ApplicationService handles submissions and the review lifecycle
type ApplicationService interface {
	JobForApplication(ctx context.Context, jobID int64) (*models.Job, error)
	Apply(ctx context.Context, actor *models.Actor, req *ApplyRequest, resume *ResumeUpload) (*models.Application, error)

	MyApplications(ctx context.Context, actor *models.Actor, page int) (*MyApplicationsResult, error)
	GetMyApplication(ctx context.Context, actor *models.Actor, id int64) (*ApplicationDetail, error)

	ListApplications(ctx context.Context, actor *models.Actor, req ListApplicationsRequest) (*models.PaginatedResponse[*models.Application], error)
	ReviewApplication(ctx context.Context, actor *models.Actor, id int64) (*ApplicationDetail, error)
	UpdateStatus(ctx context.Context, actor *models.Actor, req *UpdateStatusRequest) (*models.Application, error)
	DeleteApplication(ctx context.Context, actor *models.Actor, id int64) error
}

// ResumeService validates and stores resume uploads
type ResumeService interface {
	Validate(upload *ResumeUpload) error
	Store(ctx context.Context, upload *ResumeUpload) (string, error)
	Remove(ctx context.Context, storedPath string)
}

// AuthService manages accounts and tokens
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	IssueToken(user *models.User) (string, time.Time, error)
	ParseToken(token string) (*models.Actor, error)
	SeedAdmin(ctx context.Context) error
}

// DashboardService builds the role dashboards
type DashboardService interface {
	EmployerDashboard(ctx context.Context, actor *models.Actor) (*EmployerDashboard, error)
	AdminDashboard(ctx context.Context, actor *models.Actor) (*AdminDashboard, error)
}
