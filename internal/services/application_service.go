package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobportal/internal/access"
	"jobportal/internal/events"
	"jobportal/internal/jobquery"
	"jobportal/internal/models"
	"jobportal/internal/repositories"
	"jobportal/internal/validation"

	"go.uber.org/zap"
)

const submitFailedMessage = "An error occurred while submitting your application. Please try again later."

type applicationService struct {
	apps              repositories.ApplicationRepository
	jobs              repositories.JobRepository
	resumes           ResumeService
	strictTransitions bool
	events            events.EventBus
	logger            *zap.Logger
	now               func() time.Time
}

// NewApplicationService creates the application lifecycle service. With
// strictTransitions set, status changes must follow the forward lifecycle.
func NewApplicationService(
	apps repositories.ApplicationRepository,
	jobs repositories.JobRepository,
	resumes ResumeService,
	strictTransitions bool,
	logger *zap.Logger,
	opts ...Option,
) ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &applicationService{
		apps:              apps,
		jobs:              jobs,
		resumes:           resumes,
		strictTransitions: strictTransitions,
		events:            applyOptions(opts).events,
		logger:            logger,
		now:               time.Now,
	}
}

// JobForApplication loads the job an applicant is applying to
func (s *applicationService) JobForApplication(ctx context.Context, jobID int64) (*models.Job, error) {
	if jobID <= 0 {
		return nil, NewNotFoundError("job not found")
	}

	job, err := s.jobs.GetByID(ctx, jobID, access.JobsFor(nil))
	if err != nil {
		return nil, NewInternalError("failed to get job", err)
	}
	if job == nil {
		return nil, NewNotFoundError("job not found")
	}
	return job, nil
}

// Apply validates the form and resume, stores the resume and records the
// submission
func (s *applicationService) Apply(ctx context.Context, actor *models.Actor, req *ApplyRequest, resume *ResumeUpload) (*models.Application, error) {
	if actor == nil {
		return nil, NewUnauthorizedError("sign in to apply")
	}

	var fields []FieldError
	if err := validation.ValidateStruct(req); err != nil {
		if f := GetFieldErrors(fromValidation(err)); len(f) > 0 {
			fields = append(fields, f...)
		} else {
			return nil, fromValidation(err)
		}
	}
	if err := s.resumes.Validate(resume); err != nil {
		fields = append(fields, GetFieldErrors(err)...)
	}
	if len(fields) > 0 {
		return nil, NewDetailedValidationError("validation failed", fields)
	}

	if _, err := s.JobForApplication(ctx, req.JobID); err != nil {
		return nil, err
	}

	resumePath, err := s.resumes.Store(ctx, resume)
	if err != nil {
		if IsValidationError(err) {
			return nil, err
		}
		return nil, NewInternalError(submitFailedMessage, err)
	}

	now := s.now().UTC()
	app := &models.Application{
		JobID:          req.JobID,
		UserID:         actor.UserID,
		ApplicantName:  strings.TrimSpace(req.ApplicantName),
		ApplicantEmail: strings.TrimSpace(req.ApplicantEmail),
		ResumePath:     resumePath,
		CoverLetter:    models.StringPtr(req.CoverLetter),
		PhoneNumber:    models.StringPtr(req.PhoneNumber),
		Status:         models.ApplicationStatusSubmitted,
		AppliedOn:      now,
		LastUpdated:    &now,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		s.resumes.Remove(ctx, resumePath)
		return nil, NewInternalError(submitFailedMessage, err)
	}

	s.logger.Info("Application submitted",
		zap.Int64("application_id", app.ID),
		zap.Int64("job_id", app.JobID),
		zap.String("user_id", app.UserID),
	)
	publish(ctx, s.events, s.logger, events.NewApplicationSubmittedEvent(app.ID, app.JobID, actor.UserID, now))

	return app, nil
}

// MyApplications lists the actor's own submissions with a summary
func (s *applicationService) MyApplications(ctx context.Context, actor *models.Actor, page int) (*MyApplicationsResult, error) {
	if actor == nil {
		return nil, NewUnauthorizedError("sign in to view your applications")
	}

	scope := access.SubmittedBy(actor)
	page, pageSize := jobquery.NormalizePage(page, 0, jobquery.DefaultPageSize)

	list, err := s.apps.List(ctx, repositories.ApplicationListFilter{Page: page, PageSize: pageSize}, scope)
	if err != nil {
		return nil, NewInternalError("failed to list applications", err)
	}

	counts, err := s.apps.CountByStatus(ctx, scope)
	if err != nil {
		return nil, NewInternalError("failed to summarise applications", err)
	}

	summary := ApplicationSummary{
		Total:      sumCounts(counts),
		Pending:    counts[models.ApplicationStatusSubmitted] + counts[models.ApplicationStatusUnderReview],
		Successful: counts[models.ApplicationStatusAccepted],
		Rejected:   counts[models.ApplicationStatusRejected],
	}
	return &MyApplicationsResult{Applications: list, Summary: summary}, nil
}

// GetMyApplication returns one of the actor's own submissions with its timeline
func (s *applicationService) GetMyApplication(ctx context.Context, actor *models.Actor, id int64) (*ApplicationDetail, error) {
	app, err := s.getScoped(ctx, id, access.SubmittedBy(actor))
	if err != nil {
		return nil, err
	}

	return &ApplicationDetail{Application: app, Timeline: app.Timeline()}, nil
}

// ListApplications returns every application for admins, or the applications
// to an employer's own jobs, newest first
func (s *applicationService) ListApplications(ctx context.Context, actor *models.Actor, req ListApplicationsRequest) (*models.PaginatedResponse[*models.Application], error) {
	filter := repositories.ApplicationListFilter{
		Keyword: strings.TrimSpace(req.SearchTerm),
		JobID:   req.JobID,
	}

	switch {
	case actor.IsAdmin():
		filter.Page, filter.PageSize = jobquery.NormalizePage(req.Page, req.PageSize, jobquery.AdminPageSize)
	case actor.IsEmployer():
		filter.Page, filter.PageSize = jobquery.NormalizePage(req.Page, req.PageSize, jobquery.DefaultPageSize)
	default:
		return nil, NewForbiddenError("application management requires an employer or admin account")
	}

	if req.Status != "" {
		status, ok := models.ParseApplicationStatus(req.Status)
		if !ok {
			return nil, NewFieldError("status", fmt.Sprintf("unknown application status %q", req.Status), "INVALID")
		}
		filter.Status = status
	}

	list, err := s.apps.List(ctx, filter, access.ApplicationsFor(actor))
	if err != nil {
		return nil, NewInternalError("failed to list applications", err)
	}
	return list, nil
}

// ReviewApplication returns an application to the owning employer and records
// the first employer view
func (s *applicationService) ReviewApplication(ctx context.Context, actor *models.Actor, id int64) (*ApplicationDetail, error) {
	scope := access.ApplicationsFor(actor)

	app, err := s.getScoped(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	if actor.IsEmployer() && !app.IsViewed {
		viewedAt := s.now().UTC()
		changed, err := s.apps.MarkViewed(ctx, app.ID, viewedAt)
		if err != nil {
			return nil, NewInternalError("failed to record application view", err)
		}

		if changed {
			app.IsViewed = true
			app.ViewedOn = &viewedAt
			s.logger.Info("Application viewed by employer",
				zap.Int64("application_id", app.ID),
				zap.String("employer_id", actor.Identity()),
			)
			publish(ctx, s.events, s.logger, events.NewApplicationViewedEvent(app.ID, app.JobID, actor.UserID, viewedAt))
		} else if app, err = s.getScoped(ctx, id, scope); err != nil {
			// Another request recorded the view first; show its timestamp.
			return nil, err
		}
	}

	job, err := s.jobs.GetByID(ctx, app.JobID, access.JobsFor(nil))
	if err != nil {
		return nil, NewInternalError("failed to get job", err)
	}

	return &ApplicationDetail{
		Application:  app,
		Job:          job,
		Timeline:     app.Timeline(),
		NextStatuses: s.nextStatuses(app.Status),
	}, nil
}

func (s *applicationService) nextStatuses(current models.ApplicationStatus) []models.ApplicationStatus {
	if s.strictTransitions {
		return models.NextStatuses(current)
	}
	next := make([]models.ApplicationStatus, 0, len(models.ApplicationStatuses))
	for _, st := range models.ApplicationStatuses {
		if st != current {
			next = append(next, st)
		}
	}
	return next
}

// UpdateStatus moves an application to a new status and overwrites its
// feedback. Rows outside the actor's scope are reported as not found.
func (s *applicationService) UpdateStatus(ctx context.Context, actor *models.Actor, req *UpdateStatusRequest) (*models.Application, error) {
	if !actor.HasRole(models.RoleEmployer, models.RoleAdmin) {
		return nil, NewForbiddenError("only employers can review applications")
	}

	if err := validation.ValidateStruct(req); err != nil {
		return nil, fromValidation(err)
	}

	status, ok := models.ParseApplicationStatus(req.Status)
	if !ok {
		return nil, NewFieldError("Status", fmt.Sprintf("unknown application status %q", req.Status), "INVALID")
	}

	scope := access.ApplicationsFor(actor)
	app, err := s.getScoped(ctx, req.ApplicationID, scope)
	if err != nil {
		return nil, err
	}

	if s.strictTransitions && !models.CanTransition(app.Status, status) {
		return nil, NewFieldError("Status",
			fmt.Sprintf("cannot move an application from %s to %s", app.Status, status),
			"INVALID_TRANSITION")
	}

	update := repositories.StatusUpdate{
		ID:       app.ID,
		Status:   status,
		Feedback: models.StringPtr(req.Feedback),
		At:       s.now().UTC(),
	}

	updated, err := s.apps.UpdateStatus(ctx, update, scope)
	if err != nil {
		return nil, NewInternalError("failed to update application status", err)
	}
	if !updated {
		return nil, NewNotFoundError("application not found")
	}

	previous := app.Status
	app.Status = update.Status
	app.AdminFeedback = update.Feedback
	app.LastUpdated = &update.At

	s.logger.Info("Application status updated",
		zap.Int64("application_id", app.ID),
		zap.String("from", string(previous)),
		zap.String("status", string(app.Status)),
	)
	publish(ctx, s.events, s.logger, events.NewApplicationStatusChangedEvent(
		app.ID, app.JobID, string(previous), string(app.Status), actor.UserID, update.At))

	return app, nil
}

// DeleteApplication removes an application, then its resume file on a best
// effort basis
func (s *applicationService) DeleteApplication(ctx context.Context, actor *models.Actor, id int64) error {
	if !actor.IsAdmin() {
		return NewForbiddenError("only admins can delete applications")
	}

	app, err := s.getScoped(ctx, id, access.ApplicationsFor(actor))
	if err != nil {
		return err
	}

	deleted, err := s.apps.Delete(ctx, app.ID)
	if err != nil {
		return NewInternalError("failed to delete application", err)
	}
	if !deleted {
		return NewNotFoundError("application not found")
	}

	s.resumes.Remove(ctx, app.ResumePath)

	s.logger.Info("Application deleted", zap.Int64("application_id", app.ID))
	publish(ctx, s.events, s.logger, events.NewApplicationDeletedEvent(app.ID, app.JobID, actor.UserID, s.now().UTC()))
	return nil
}

func (s *applicationService) getScoped(ctx context.Context, id int64, scope access.ApplicationFilter) (*models.Application, error) {
	if id <= 0 {
		return nil, NewNotFoundError("application not found")
	}

	app, err := s.apps.GetByID(ctx, id, scope)
	if err != nil {
		return nil, NewInternalError("failed to get application", err)
	}
	if app == nil {
		return nil, NewNotFoundError("application not found")
	}
	return app, nil
}
