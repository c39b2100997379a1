package services

import (
	"context"
	"time"

	"jobportal/internal/access"
	"jobportal/internal/models"
	"jobportal/internal/repositories"

	"go.uber.org/zap"
)

const (
	recentApplicationsLimit = 5
	dashboardMonths         = 5
)

type dashboardService struct {
	jobs   repositories.JobRepository
	apps   repositories.ApplicationRepository
	users  repositories.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService creates the dashboard service
func NewDashboardService(jobs repositories.JobRepository, apps repositories.ApplicationRepository, users repositories.UserRepository, logger *zap.Logger) DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dashboardService{jobs: jobs, apps: apps, users: users, logger: logger, now: time.Now}
}

func (s *dashboardService) EmployerDashboard(ctx context.Context, actor *models.Actor) (*EmployerDashboard, error) {
	if !actor.IsEmployer() {
		return nil, NewForbiddenError("the employer dashboard requires an employer account")
	}

	jobCounts, err := s.jobs.CountByStatus(ctx, access.JobsFor(actor))
	if err != nil {
		return nil, NewInternalError("failed to load dashboard", err)
	}

	scope := access.ApplicationsFor(actor)
	appCounts, err := s.apps.CountByStatus(ctx, scope)
	if err != nil {
		return nil, NewInternalError("failed to load dashboard", err)
	}

	recent, err := s.apps.List(ctx, repositories.ApplicationListFilter{Page: 1, PageSize: recentApplicationsLimit}, scope)
	if err != nil {
		return nil, NewInternalError("failed to load dashboard", err)
	}

	return &EmployerDashboard{
		TotalJobs:          sumCounts(jobCounts),
		ActiveJobs:         jobCounts[models.JobStatusActive],
		ExpiredJobs:        jobCounts[models.JobStatusExpired],
		TotalApplications:  sumCounts(appCounts),
		NewApplications:    appCounts[models.ApplicationStatusSubmitted],
		ReviewingApps:      appCounts[models.ApplicationStatusUnderReview],
		RecentApplications: recent.Data,
	}, nil
}

func (s *dashboardService) AdminDashboard(ctx context.Context, actor *models.Actor) (*AdminDashboard, error) {
	if !actor.IsAdmin() {
		return nil, NewForbiddenError("the admin dashboard requires an admin account")
	}

	jobCounts, err := s.jobs.CountByStatus(ctx, access.JobsFor(actor))
	if err != nil {
		return nil, NewInternalError("failed to load dashboard", err)
	}

	appCounts, err := s.apps.CountByStatus(ctx, access.ApplicationsFor(actor))
	if err != nil {
		return nil, NewInternalError("failed to load dashboard", err)
	}

	roleCounts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, NewInternalError("failed to load dashboard", err)
	}

	months := monthWindow(s.now(), dashboardMonths)
	monthCounts, err := s.jobs.CountByMonth(ctx, months[0])
	if err != nil {
		return nil, NewInternalError("failed to load dashboard", err)
	}

	byMonth := make([]MonthCount, 0, len(months))
	for _, m := range months {
		byMonth = append(byMonth, MonthCount{Month: m.Format("Jan 2006"), Count: monthCounts[m]})
	}

	usersByRole := make(map[models.Role]int64, len(models.Roles))
	for _, r := range models.Roles {
		usersByRole[r] = roleCounts[r]
	}

	return &AdminDashboard{
		TotalJobs:         sumCounts(jobCounts),
		TotalApplications: sumCounts(appCounts),
		TotalUsers:        sumCounts(roleCounts),
		JobsByMonth:       byMonth,
		UsersByRole:       usersByRole,
	}, nil
}

// monthWindow returns the first instant, in UTC, of the n calendar months
// ending with the month containing now, oldest first
func monthWindow(now time.Time, n int) []time.Time {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month()-time.Month(n-1), 1, 0, 0, 0, 0, time.UTC)

	months := make([]time.Time, n)
	for i := range months {
		months[i] = start.AddDate(0, i, 0)
	}
	return months
}

func sumCounts[K comparable](counts map[K]int64) int64 {
	var total int64
	for _, n := range counts {
		total += n
	}
	return total
}
