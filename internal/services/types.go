package services

import (
	"io"
	"time"

	"jobportal/internal/jobquery"
	"jobportal/internal/models"
)

// ===============================
// JOB TYPES
// ===============================

// PostJobRequest is the job post form
type PostJobRequest struct {
	Title          string     `schema:"Title" json:"title" validate:"required,min=5,max=100"`
	Company        string     `schema:"Company" json:"company" validate:"required,max=100"`
	Location       string     `schema:"Location" json:"location" validate:"required,max=100"`
	Description    string     `schema:"Description" json:"description" validate:"required,max=5000"`
	Salary         float64    `schema:"Salary" json:"salary" validate:"gte=0"`
	JobType        string     `schema:"JobType" json:"job_type" validate:"required,oneof=FullTime PartTime Contract Temporary Internship Remote Freelance"`
	ExpiryDate     *time.Time `schema:"ExpiryDate" json:"expiry_date,omitempty"`
	CompanyLogoURL string     `schema:"CompanyLogoUrl" json:"company_logo_url,omitempty" validate:"omitempty,url,max=200"`
	Requirements   string     `schema:"Requirements" json:"requirements,omitempty" validate:"max=2000"`
	Benefits       string     `schema:"Benefits" json:"benefits,omitempty" validate:"max=2000"`
	Tags           string     `schema:"Tags" json:"tags,omitempty"`
	// EmployerID is honoured for admins only
	EmployerID string `schema:"EmployerId" json:"employer_id,omitempty" validate:"omitempty,max=256"`
}

// ListJobsRequest is the admin and employer job list input
type ListJobsRequest struct {
	SearchTerm string `schema:"searchTerm"`
	Page       int    `schema:"page"`
	PageSize   int    `schema:"pageSize"`
}

// JobSearchResult is one page of the public job index with its filter choices
type JobSearchResult struct {
	Jobs     *models.PaginatedResponse[*models.Job] `json:"jobs"`
	Facets   *jobquery.Facets                      `json:"facets"`
	Criteria jobquery.Criteria                     `json:"criteria"`
}

// ===============================
// APPLICATION TYPES
// ===============================

// ApplyRequest is the application form, minus the resume file
type ApplyRequest struct {
	JobID          int64  `schema:"JobId" json:"job_id" validate:"required,gt=0"`
	ApplicantName  string `schema:"ApplicantName" json:"applicant_name" validate:"required,max=100"`
	ApplicantEmail string `schema:"ApplicantEmail" json:"applicant_email" validate:"required,email,max=100"`
	CoverLetter    string `schema:"CoverLetter" json:"cover_letter,omitempty" validate:"max=5000"`
	PhoneNumber    string `schema:"PhoneNumber" json:"phone_number,omitempty" validate:"max=50"`
}

// ResumeUpload is an uploaded resume file
type ResumeUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// ListApplicationsRequest is the admin and employer application list input
type ListApplicationsRequest struct {
	SearchTerm string `schema:"searchTerm"`
	Status     string `schema:"status"`
	JobID      int64  `schema:"jobId"`
	Page       int    `schema:"page"`
	PageSize   int    `schema:"pageSize"`
}

// UpdateStatusRequest is one employer review action
type UpdateStatusRequest struct {
	ApplicationID int64  `schema:"ApplicationId" json:"application_id" validate:"required,gt=0"`
	Status        string `schema:"Status" json:"status" validate:"required"`
	Feedback      string `schema:"Feedback" json:"feedback,omitempty" validate:"max=1000"`
}

// ApplicationSummary counts an applicant's submissions by outcome
type ApplicationSummary struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Successful int64 `json:"successful"`
	Rejected   int64 `json:"rejected"`
}

// MyApplicationsResult is the applicant's paged list and summary
type MyApplicationsResult struct {
	Applications *models.PaginatedResponse[*models.Application] `json:"applications"`
	Summary      ApplicationSummary                             `json:"summary"`
}

// ApplicationDetail is an application with its derived timeline
type ApplicationDetail struct {
	Application  *models.Application       `json:"application"`
	Job          *models.Job               `json:"job,omitempty"`
	Timeline     []models.TimelineEntry    `json:"timeline"`
	NextStatuses []models.ApplicationStatus `json:"next_statuses,omitempty"`
}

// ===============================
// ACCOUNT TYPES
// ===============================

// RegisterRequest is the sign-up form
type RegisterRequest struct {
	Email    string `schema:"Email" json:"email" validate:"required,email,max=256"`
	Password string `schema:"Password" json:"password" validate:"required,min=8,max=72"`
	Role     string `schema:"Role" json:"role" validate:"required,oneof=Employer Applicant"`
}

// LoginRequest is the sign-in form
type LoginRequest struct {
	Email    string `schema:"Email" json:"email" validate:"required,email"`
	Password string `schema:"Password" json:"password" validate:"required"`
}

// LoginResult carries the issued token
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// ===============================
// DASHBOARD TYPES
// ===============================

// EmployerDashboard summarises one employer's jobs and applicants
type EmployerDashboard struct {
	TotalJobs          int64                 `json:"total_jobs"`
	ActiveJobs         int64                 `json:"active_jobs"`
	ExpiredJobs        int64                 `json:"expired_jobs"`
	TotalApplications  int64                 `json:"total_applications"`
	NewApplications    int64                 `json:"new_applications"`
	ReviewingApps      int64                 `json:"reviewing_applications"`
	RecentApplications []*models.Application `json:"recent_applications"`
}

// MonthCount is the number of jobs posted in one calendar month
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// AdminDashboard summarises the whole board
type AdminDashboard struct {
	TotalJobs         int64                 `json:"total_jobs"`
	TotalApplications int64                 `json:"total_applications"`
	TotalUsers        int64                 `json:"total_users"`
	JobsByMonth       []MonthCount          `json:"jobs_by_month"`
	UsersByRole       map[models.Role]int64 `json:"users_by_role"`
}
