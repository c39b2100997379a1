package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"jobportal/internal/access"
	"jobportal/internal/jobquery"
	"jobportal/internal/models"
	"jobportal/internal/repositories"
)

// ===============================
// JOB REPOSITORY
// ===============================

type fakeJobRepo struct {
	mu         sync.Mutex
	jobs       []*models.Job
	nextID     int64
	facetCalls int
	createErr  error
}

func (r *fakeJobRepo) Create(ctx context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	job.ID = r.nextID
	c := *job
	r.jobs = append(r.jobs, &c)
	return nil
}

func (r *fakeJobRepo) find(id int64) *models.Job {
	for _, j := range r.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id int64, scope access.JobFilter) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.find(id)
	if job == nil || !scope.Allows(job) {
		return nil, nil
	}
	c := *job
	return &c, nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, j := range r.jobs {
		if j.ID == id {
			r.jobs = append(r.jobs[:i], r.jobs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeJobRepo) Search(ctx context.Context, q jobquery.Query, scope access.JobFilter) (*models.PaginatedResponse[*models.Job], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	visible := make([]*models.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if scope.Allows(j) {
			visible = append(visible, j)
		}
	}

	matched := q.Filter(visible)
	q.Sort(matched)

	return &models.PaginatedResponse[*models.Job]{
		Data:       jobquery.Page(matched, q.Page, q.PageSize),
		Pagination: models.NewPaginationMeta(q.Page, q.PageSize, int64(len(matched))),
	}, nil
}

func (r *fakeJobRepo) distinct(field func(*models.Job) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, j := range r.jobs {
		v := field(j)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (r *fakeJobRepo) DistinctCompanies(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facetCalls++
	return r.distinct(func(j *models.Job) string { return j.Company }), nil
}

func (r *fakeJobRepo) DistinctLocations(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.distinct(func(j *models.Job) string { return j.Location }), nil
}

func (r *fakeJobRepo) TagStrings(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, j := range r.jobs {
		if strings.TrimSpace(j.Tags) != "" {
			out = append(out, j.Tags)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) CountByStatus(ctx context.Context, scope access.JobFilter) (map[models.JobStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.JobStatus]int64{}
	for _, j := range r.jobs {
		if scope.Allows(j) {
			counts[j.Status]++
		}
	}
	return counts, nil
}

func (r *fakeJobRepo) CountByMonth(ctx context.Context, since time.Time) (map[time.Time]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[time.Time]int64{}
	for _, j := range r.jobs {
		if j.PostedDate.Before(since) {
			continue
		}
		p := j.PostedDate.UTC()
		counts[time.Date(p.Year(), p.Month(), 1, 0, 0, 0, 0, time.UTC)]++
	}
	return counts, nil
}

// ===============================
// APPLICATION REPOSITORY
// ===============================

type fakeApplicationRepo struct {
	mu        sync.Mutex
	jobs      *fakeJobRepo
	apps      []*models.Application
	nextID    int64
	createErr error
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	app.ID = r.nextID
	c := *app
	r.apps = append(r.apps, &c)
	return nil
}

func (r *fakeApplicationRepo) visible(app *models.Application, scope access.ApplicationFilter) bool {
	r.jobs.mu.Lock()
	job := r.jobs.find(app.JobID)
	r.jobs.mu.Unlock()
	return scope.Allows(app, job)
}

func (r *fakeApplicationRepo) find(id int64) *models.Application {
	for _, a := range r.apps {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id int64, scope access.ApplicationFilter) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.find(id)
	if app == nil || !r.visible(app, scope) {
		return nil, nil
	}
	c := *app
	return &c, nil
}

func (r *fakeApplicationRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.apps {
		if a.ID == id {
			r.apps = append(r.apps[:i], r.apps[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeApplicationRepo) List(ctx context.Context, filter repositories.ApplicationListFilter, scope access.ApplicationFilter) (*models.PaginatedResponse[*models.Application], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []*models.Application{}
	for _, a := range r.apps {
		if !r.visible(a, scope) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.JobID > 0 && a.JobID != filter.JobID {
			continue
		}
		if kw := strings.ToLower(filter.Keyword); kw != "" &&
			!strings.Contains(strings.ToLower(a.ApplicantName), kw) &&
			!strings.Contains(strings.ToLower(a.ApplicantEmail), kw) {
			continue
		}
		c := *a
		matched = append(matched, &c)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].AppliedOn.Equal(matched[j].AppliedOn) {
			return matched[i].AppliedOn.After(matched[j].AppliedOn)
		}
		return matched[i].ID > matched[j].ID
	})

	return &models.PaginatedResponse[*models.Application]{
		Data:       jobquery.Page(matched, filter.Page, filter.PageSize),
		Pagination: models.NewPaginationMeta(filter.Page, filter.PageSize, int64(len(matched))),
	}, nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, update repositories.StatusUpdate, scope access.ApplicationFilter) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.find(update.ID)
	if app == nil || !r.visible(app, scope) {
		return false, nil
	}
	app.Status = update.Status
	app.AdminFeedback = update.Feedback
	at := update.At
	app.LastUpdated = &at
	return true, nil
}

func (r *fakeApplicationRepo) MarkViewed(ctx context.Context, id int64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.find(id)
	if app == nil || app.IsViewed {
		return false, nil
	}
	app.IsViewed = true
	app.ViewedOn = &at
	return true, nil
}

func (r *fakeApplicationRepo) CountByStatus(ctx context.Context, scope access.ApplicationFilter) (map[models.ApplicationStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.ApplicationStatus]int64{}
	for _, a := range r.apps {
		if r.visible(a, scope) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

// ===============================
// USER REPOSITORY
// ===============================

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return false, nil
	}
	c := *user
	r.users[user.Email] = &c
	return true, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[models.NormalizeEmail(email)]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[models.NormalizeEmail(email)]
	return ok, nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.Role]int64{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}

// ===============================
// RESUME STORE
// ===============================

type fakeStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	deleted   []string
	n         int
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string][]byte{}}
}

func (s *fakeStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	ext := ""
	if i := strings.LastIndex(originalName, "."); i >= 0 {
		ext = strings.ToLower(originalName[i:])
	}
	p := fmt.Sprintf("/resumes/file-%d%s", s.n, ext)
	s.files[p] = content
	return p, nil
}

func (s *fakeStore) Delete(ctx context.Context, storedPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, storedPath)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.files, storedPath)
	return nil
}

// ===============================
// HELPERS
// ===============================

var errDatabase = errors.New("database unavailable")

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *testClock {
	return &testClock{t: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
}

func pdfUpload(size int) *ResumeUpload {
	return &ResumeUpload{
		Filename: "cv.pdf",
		Size:     int64(size),
		Content:  bytes.NewReader(bytes.Repeat([]byte("x"), size)),
	}
}

var (
	adminActor = &models.Actor{UserID: "a-1", Email: "admin@example.com", Role: models.RoleAdmin}
	aliceActor = &models.Actor{UserID: "e-1", Email: "Alice@Co.com", Role: models.RoleEmployer}
	bobActor   = &models.Actor{UserID: "e-2", Email: "bob@co.com", Role: models.RoleEmployer}
	carolActor = &models.Actor{UserID: "u-1", Email: "carol@mail.com", Role: models.RoleApplicant}
	daveActor  = &models.Actor{UserID: "u-2", Email: "dave@mail.com", Role: models.RoleApplicant}
)

func adminScope() access.ApplicationFilter {
	return access.ApplicationsFor(adminActor)
}
