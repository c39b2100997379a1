//go:build integration
// +build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"jobportal/internal/access"
	"jobportal/internal/config"
	"jobportal/internal/database"
	"jobportal/internal/jobquery"
	"jobportal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupTestDB starts PostgreSQL, applies the migrations and returns a manager
func setupTestDB(t *testing.T) *database.Manager {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("jobportal"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		URL:                connStr,
		MaxOpenConns:       5,
		MaxIdleConns:       2,
		ConnMaxLifetime:    time.Minute,
		SlowQueryThreshold: time.Second,
	}

	manager, err := database.NewManager(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	require.NoError(t, manager.Migrate("../../migrations"))

	return manager
}

func seedJobs(t *testing.T, repo JobRepository) []*models.Job {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jobs := []*models.Job{
		{Title: "Backend Engineer", Company: "Acme", Location: "Remote", Description: "Build APIs", Salary: 90000,
			JobType: models.JobTypeRemote, Status: models.JobStatusActive, Tags: "Go,backend",
			PostedDate: base.Add(48 * time.Hour), EmployerID: "alice@co.com"},
		{Title: "Frontend Developer", Company: "Globex", Location: "Berlin", Description: "React work", Salary: 60000,
			JobType: models.JobTypeFullTime, Status: models.JobStatusActive, Tags: "react, frontend",
			PostedDate: base.Add(24 * time.Hour), EmployerID: "bob@co.com"},
		{Title: "Data Intern", Company: "Acme Labs", Location: "Paris", Description: "Backend data pipelines", Salary: 20000,
			JobType: models.JobTypeInternship, Status: models.JobStatusExpired,
			PostedDate: base, EmployerID: "alice@co.com"},
	}

	for _, job := range jobs {
		require.NoError(t, repo.Create(context.Background(), job))
		require.NotZero(t, job.ID)
	}

	return jobs
}

func TestIntegrationJobSearchMatchesInMemorySemantics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db, zap.NewNop())
	jobs := seedJobs(t, repo)

	minSalary := 50000.0
	criteria := []jobquery.Criteria{
		{},
		{Keyword: "backend", MinSalary: &minSalary},
		{Keyword: "ACME"},
		{Location: "remote", Company: "acme"},
		{Tags: "front"},
		{Remote: true, JobType: "FullTime"},
		{SortBy: "salary", PageSize: 2, Page: 2},
		{Page: 9},
	}

	for _, c := range criteria {
		q := c.Normalize(jobquery.DefaultPageSize)

		expected := q.Filter(jobs)
		q.Sort(expected)
		window := jobquery.Page(expected, q.Page, q.PageSize)

		result, err := repo.Search(context.Background(), q, access.JobsFor(nil))
		require.NoError(t, err)

		assert.Equal(t, int64(len(expected)), result.Pagination.Total, "%+v", c)
		require.Len(t, result.Data, len(window), "%+v", c)
		for i := range window {
			assert.Equal(t, window[i].ID, result.Data[i].ID, "%+v", c)
		}
	}
}

func TestIntegrationEmployerScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db, zap.NewNop())
	jobs := seedJobs(t, repo)

	bob := &models.Actor{Email: "bob@co.com", Role: models.RoleEmployer}
	q := jobquery.Criteria{Keyword: "backend"}.Normalize(jobquery.DefaultPageSize)

	result, err := repo.Search(context.Background(), q, access.JobsFor(bob))
	require.NoError(t, err)
	assert.Empty(t, result.Data)

	job, err := repo.GetByID(context.Background(), jobs[0].ID, access.JobsFor(bob))
	require.NoError(t, err)
	assert.Nil(t, job)

	counts, err := repo.CountByStatus(context.Background(), access.JobsFor(&models.Actor{Email: "alice@co.com", Role: models.RoleEmployer}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.JobStatusActive])
	assert.Equal(t, int64(1), counts[models.JobStatusExpired])
}

func TestIntegrationEmployerScopingIgnoresStoredEmailCase(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db, zap.NewNop())
	appRepo := NewApplicationRepository(db, zap.NewNop())

	imported := &models.Job{Title: "Imported Role", Company: "Acme", Location: "Remote", Description: "Seeded row",
		JobType: models.JobTypeContract, Status: models.JobStatusActive,
		PostedDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), EmployerID: " Alice@Co.COM "}
	require.NoError(t, repo.Create(context.Background(), imported))

	now := time.Now().UTC().Truncate(time.Microsecond)
	app := &models.Application{JobID: imported.ID, UserID: "u-1", ApplicantName: "Carol", ApplicantEmail: "carol@mail.com",
		Status: models.ApplicationStatusSubmitted, AppliedOn: now, LastUpdated: &now}
	require.NoError(t, appRepo.Create(context.Background(), app))

	alice := &models.Actor{Email: "alice@co.com", Role: models.RoleEmployer}
	bob := &models.Actor{Email: "bob@co.com", Role: models.RoleEmployer}

	job, err := repo.GetByID(context.Background(), imported.ID, access.JobsFor(alice))
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.True(t, access.JobsFor(alice).Allows(job))

	q := jobquery.Criteria{Keyword: "imported"}.Normalize(jobquery.DefaultPageSize)
	result, err := repo.Search(context.Background(), q, access.JobsFor(alice))
	require.NoError(t, err)
	require.Len(t, result.Data, 1)

	stored, err := appRepo.GetByID(context.Background(), app.ID, access.ApplicationsFor(alice))
	require.NoError(t, err)
	assert.NotNil(t, stored)

	stored, err = appRepo.GetByID(context.Background(), app.ID, access.ApplicationsFor(bob))
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestIntegrationApplicationsSurviveJobDeletion(t *testing.T) {
	db := setupTestDB(t)
	jobRepo := NewJobRepository(db, zap.NewNop())
	appRepo := NewApplicationRepository(db, zap.NewNop())
	jobs := seedJobs(t, jobRepo)

	now := time.Now().UTC().Truncate(time.Microsecond)
	app := &models.Application{
		JobID:          jobs[0].ID,
		UserID:         "u-1",
		ApplicantName:  "Carol",
		ApplicantEmail: "carol@mail.com",
		ResumePath:     "/resumes/a.pdf",
		Status:         models.ApplicationStatusSubmitted,
		AppliedOn:      now,
		LastUpdated:    &now,
	}
	require.NoError(t, appRepo.Create(context.Background(), app))

	deleted, err := jobRepo.Delete(context.Background(), jobs[0].ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	orphan, err := appRepo.GetByID(context.Background(), app.ID, access.ApplicationsFor(&models.Actor{Role: models.RoleAdmin}))
	require.NoError(t, err)
	require.NotNil(t, orphan)
	assert.Equal(t, jobs[0].ID, orphan.JobID)
	assert.Empty(t, orphan.JobTitle)
}

func TestIntegrationViewTrackingAndStatusUpdate(t *testing.T) {
	db := setupTestDB(t)
	jobRepo := NewJobRepository(db, zap.NewNop())
	appRepo := NewApplicationRepository(db, zap.NewNop())
	jobs := seedJobs(t, jobRepo)

	now := time.Now().UTC().Truncate(time.Microsecond)
	app := &models.Application{
		JobID: jobs[0].ID, UserID: "u-1", ApplicantName: "Carol", ApplicantEmail: "carol@mail.com",
		Status: models.ApplicationStatusSubmitted, AppliedOn: now, LastUpdated: &now,
	}
	require.NoError(t, appRepo.Create(context.Background(), app))

	first := now.Add(time.Minute)
	changed, err := appRepo.MarkViewed(context.Background(), app.ID, first)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = appRepo.MarkViewed(context.Background(), app.ID, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	alice := &models.Actor{Email: "alice@co.com", Role: models.RoleEmployer}
	bob := &models.Actor{Email: "bob@co.com", Role: models.RoleEmployer}

	update := StatusUpdate{ID: app.ID, Status: models.ApplicationStatusUnderReview, Feedback: models.StringPtr("ok"), At: first}
	updated, err := appRepo.UpdateStatus(context.Background(), update, access.ApplicationsFor(bob))
	require.NoError(t, err)
	assert.False(t, updated)

	updated, err = appRepo.UpdateStatus(context.Background(), update, access.ApplicationsFor(alice))
	require.NoError(t, err)
	assert.True(t, updated)

	stored, err := appRepo.GetByID(context.Background(), app.ID, access.ApplicationsFor(alice))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsViewed)
	require.NotNil(t, stored.ViewedOn)
	assert.True(t, first.Equal(*stored.ViewedOn))
	assert.Equal(t, models.ApplicationStatusUnderReview, stored.Status)
	assert.Equal(t, "ok", models.StringValue(stored.AdminFeedback))
}
