// file: internal/models/models.go
package models

import (
	"strings"
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// Job represents a job posting
type Job struct {
	// Core fields
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title" validate:"required,min=5,max=100"`
	Company     string  `json:"company" db:"company" validate:"required,max=100"`
	Location    string  `json:"location" db:"location" validate:"required,max=100"`
	Description string  `json:"description" db:"description" validate:"required,max=5000"`
	Salary      float64 `json:"salary" db:"salary" validate:"gte=0"`
	JobType     JobType `json:"job_type" db:"job_type" validate:"required,oneof=FullTime PartTime Contract Temporary Internship Remote Freelance"`

	// Status and tracking
	Status     JobStatus  `json:"status" db:"status" validate:"oneof=Active Expired"`
	PostedDate time.Time  `json:"posted_date" db:"posted_date"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`

	// Optional details
	CompanyLogoURL *string `json:"company_logo_url,omitempty" db:"company_logo_url" validate:"omitempty,max=200"`
	Requirements   *string `json:"requirements,omitempty" db:"requirements" validate:"omitempty,max=2000"`
	Benefits       *string `json:"benefits,omitempty" db:"benefits" validate:"omitempty,max=2000"`
	Tags           string  `json:"tags" db:"tags"`

	// Owning employer's login email, not a foreign key
	EmployerID string `json:"employer_id" db:"employer_id"`
}

// Application represents a candidate's application to a job
type Application struct {
	// Core fields
	ID             int64  `json:"id" db:"id"`
	JobID          int64  `json:"job_id" db:"job_id" validate:"required"`
	UserID         string `json:"user_id,omitempty" db:"user_id"`
	ApplicantName  string `json:"applicant_name" db:"applicant_name" validate:"required,max=100"`
	ApplicantEmail string `json:"applicant_email" db:"applicant_email" validate:"required,email,max=100"`

	// Documents
	ResumePath  string  `json:"resume_path" db:"resume_path"`
	CoverLetter *string `json:"cover_letter,omitempty" db:"cover_letter" validate:"omitempty,max=5000"`
	PhoneNumber *string `json:"phone_number,omitempty" db:"phone_number" validate:"omitempty,max=50"`

	// Status tracking
	Status        ApplicationStatus `json:"status" db:"status"`
	AppliedOn     time.Time         `json:"applied_on" db:"applied_on"`
	LastUpdated   *time.Time        `json:"last_updated,omitempty" db:"last_updated"`
	IsViewed      bool              `json:"is_viewed" db:"is_viewed"`
	ViewedOn      *time.Time        `json:"viewed_on,omitempty" db:"viewed_on"`
	AdminFeedback *string           `json:"admin_feedback,omitempty" db:"admin_feedback" validate:"omitempty,max=1000"`

	// Related information (joined)
	JobTitle   string `json:"job_title,omitempty" db:"job_title"`
	JobCompany string `json:"job_company,omitempty" db:"job_company"`
}

// User is a local account carrying the role and identity of an actor
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email" validate:"required,email,max=256"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ===============================
// PAGINATION
// ===============================

// PaginatedResponse represents a page of results
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPaginationMeta computes page counts for a total
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ===============================
// HELPER METHODS
// ===============================

// IsOwnedBy checks if the employer identity owns the job
func (j *Job) IsOwnedBy(identity string) bool {
	return j.EmployerID != "" && NormalizeEmail(j.EmployerID) == NormalizeEmail(identity)
}

// IsActive checks if the job is open for applications
func (j *Job) IsActive() bool {
	return j.Status == JobStatusActive
}

// IsPending reports whether the application still awaits a decision
func (a *Application) IsPending() bool {
	return a.Status == ApplicationStatusSubmitted || a.Status == ApplicationStatusUnderReview
}

// NormalizeEmail lower-cases and trims an email so it can be compared as an identity
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// StringValue dereferences an optional string
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for blank input
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
