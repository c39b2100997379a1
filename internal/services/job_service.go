// file: internal/services/job_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobportal/internal/access"
	"jobportal/internal/cache"
	"jobportal/internal/events"
	"jobportal/internal/jobquery"
	"jobportal/internal/models"
	"jobportal/internal/repositories"
	"jobportal/internal/validation"

	"go.uber.org/zap"
)

const facetsCacheKey = "jobs:facets"

type jobService struct {
	repo              repositories.JobRepository
	cache             cache.Cache
	cacheTTL          time.Duration
	defaultEmployerID string
	events            events.EventBus
	logger            *zap.Logger
	now               func() time.Time
}

// NewJobService creates a new job service. Jobs posted by an admin without an
// explicit employer are attributed to defaultEmployerID.
func NewJobService(repo repositories.JobRepository, c cache.Cache, cacheTTL time.Duration, defaultEmployerID string, logger *zap.Logger, opts ...Option) JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.NewMemoryCache(&cache.Config{MaxKeys: 16}, logger)
	}
	return &jobService{
		repo:              repo,
		cache:             c,
		cacheTTL:          cacheTTL,
		defaultEmployerID: models.NormalizeEmail(defaultEmployerID),
		events:            applyOptions(opts).events,
		logger:            logger,
		now:               time.Now,
	}
}

// Search runs the public job index query
func (s *jobService) Search(ctx context.Context, criteria jobquery.Criteria) (*JobSearchResult, error) {
	q := criteria.Normalize(jobquery.DefaultPageSize)

	jobs, err := s.repo.Search(ctx, q, access.JobsFor(nil))
	if err != nil {
		return nil, NewInternalError("failed to search jobs", err)
	}

	facets, err := s.Facets(ctx)
	if err != nil {
		return nil, err
	}

	return &JobSearchResult{Jobs: jobs, Facets: facets, Criteria: criteria}, nil
}

// GetJob retrieves a job by its ID
func (s *jobService) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	if id <= 0 {
		return nil, NewNotFoundError("job not found")
	}

	job, err := s.repo.GetByID(ctx, id, access.JobsFor(nil))
	if err != nil {
		return nil, NewInternalError("failed to get job", err)
	}
	if job == nil {
		return nil, NewNotFoundError("job not found")
	}

	return job, nil
}

// PostJob creates a job owned by the posting employer
func (s *jobService) PostJob(ctx context.Context, actor *models.Actor, req *PostJobRequest) (*models.Job, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleEmployer) {
		return nil, NewForbiddenError("only employers and admins can post jobs")
	}

	if err := validation.ValidateStruct(req); err != nil {
		return nil, fromValidation(err)
	}

	jobType, _ := models.ParseJobType(req.JobType)
	job := &models.Job{
		Title:          strings.TrimSpace(req.Title),
		Company:        strings.TrimSpace(req.Company),
		Location:       strings.TrimSpace(req.Location),
		Description:    strings.TrimSpace(req.Description),
		Salary:         req.Salary,
		JobType:        jobType,
		Status:         models.JobStatusActive,
		PostedDate:     s.now().UTC(),
		ExpiryDate:     req.ExpiryDate,
		CompanyLogoURL: models.StringPtr(req.CompanyLogoURL),
		Requirements:   models.StringPtr(req.Requirements),
		Benefits:       models.StringPtr(req.Benefits),
		Tags:           strings.TrimSpace(req.Tags),
		EmployerID:     s.employerFor(actor, req.EmployerID),
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, NewInternalError("failed to post job", err)
	}

	s.invalidateFacets(ctx)

	s.logger.Info("Job posted",
		zap.Int64("job_id", job.ID),
		zap.String("employer_id", job.EmployerID),
		zap.String("role", string(actor.Role)),
	)
	publish(ctx, s.events, s.logger, events.NewJobPostedEvent(job.ID, job.Title, job.EmployerID, actor.UserID, job.PostedDate))

	return job, nil
}

// employerFor derives the owning identity of a new job
func (s *jobService) employerFor(actor *models.Actor, requested string) string {
	if actor.IsEmployer() {
		return actor.Identity()
	}
	if id := models.NormalizeEmail(requested); id != "" {
		return id
	}
	return s.defaultEmployerID
}

// DeleteJob removes a job. Its applications are left in place.
func (s *jobService) DeleteJob(ctx context.Context, actor *models.Actor, id int64) error {
	if !actor.IsAdmin() {
		return NewForbiddenError("only admins can delete jobs")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return NewInternalError("failed to delete job", err)
	}
	if !deleted {
		return NewNotFoundError("job not found")
	}

	s.invalidateFacets(ctx)

	s.logger.Info("Job deleted", zap.Int64("job_id", id))
	publish(ctx, s.events, s.logger, events.NewJobDeletedEvent(id, actor.UserID, s.now().UTC()))
	return nil
}

// ListJobs returns the admin view of every job or the employer view of
// their own jobs, newest first
func (s *jobService) ListJobs(ctx context.Context, actor *models.Actor, req ListJobsRequest) (*models.PaginatedResponse[*models.Job], error) {
	q := jobquery.Query{
		Keyword: strings.TrimSpace(req.SearchTerm),
		SortBy:  jobquery.SortDate,
	}

	switch {
	case actor.IsAdmin():
		q.KeywordFields = jobquery.AdminKeywordFields
		q.Page, q.PageSize = jobquery.NormalizePage(req.Page, req.PageSize, jobquery.AdminPageSize)
	case actor.IsEmployer():
		q.KeywordFields = jobquery.EmployerKeywordFields
		q.Page, q.PageSize = jobquery.NormalizePage(req.Page, req.PageSize, jobquery.DefaultPageSize)
	default:
		return nil, NewForbiddenError("job management requires an employer or admin account")
	}

	jobs, err := s.repo.Search(ctx, q, access.JobsFor(actor))
	if err != nil {
		return nil, NewInternalError("failed to list jobs", err)
	}

	return jobs, nil
}

// Facets returns the filter choices for the job index, cached until the next
// job is posted or deleted
func (s *jobService) Facets(ctx context.Context) (*jobquery.Facets, error) {
	facets, err := cache.Remember(ctx, s.cache, s.logger, facetsCacheKey, s.cacheTTL, func() (*jobquery.Facets, error) {
		companies, err := s.repo.DistinctCompanies(ctx)
		if err != nil {
			return nil, err
		}
		locations, err := s.repo.DistinctLocations(ctx)
		if err != nil {
			return nil, err
		}
		tagStrings, err := s.repo.TagStrings(ctx)
		if err != nil {
			return nil, err
		}

		return &jobquery.Facets{
			Companies: companies,
			Locations: locations,
			Tags:      jobquery.ParseTags(tagStrings),
			JobTypes:  models.JobTypes,
		}, nil
	})
	if err != nil {
		return nil, NewInternalError("failed to load job filters", fmt.Errorf("facets: %w", err))
	}

	return facets, nil
}

func (s *jobService) invalidateFacets(ctx context.Context) {
	if err := s.cache.Delete(ctx, facetsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate job filters cache", zap.Error(err))
	}
}
