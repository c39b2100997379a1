package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/contextutils"
	"jobportal/internal/database"
	"jobportal/internal/jobquery"
	"jobportal/internal/models"
	"jobportal/internal/response"
	"jobportal/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubJobs overrides only the JobService methods a test needs
type stubJobs struct {
	services.JobService
	search func(ctx context.Context, criteria jobquery.Criteria) (*services.JobSearchResult, error)
	get    func(ctx context.Context, id int64) (*models.Job, error)
	post   func(ctx context.Context, actor *models.Actor, req *services.PostJobRequest) (*models.Job, error)
	delete func(ctx context.Context, actor *models.Actor, id int64) error
}

func (s *stubJobs) Search(ctx context.Context, criteria jobquery.Criteria) (*services.JobSearchResult, error) {
	return s.search(ctx, criteria)
}

func (s *stubJobs) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	return s.get(ctx, id)
}

func (s *stubJobs) PostJob(ctx context.Context, actor *models.Actor, req *services.PostJobRequest) (*models.Job, error) {
	return s.post(ctx, actor, req)
}

func (s *stubJobs) DeleteJob(ctx context.Context, actor *models.Actor, id int64) error {
	return s.delete(ctx, actor, id)
}

type stubApplications struct {
	services.ApplicationService
	apply        func(ctx context.Context, actor *models.Actor, req *services.ApplyRequest, resume *services.ResumeUpload) (*models.Application, error)
	updateStatus func(ctx context.Context, actor *models.Actor, req *services.UpdateStatusRequest) (*models.Application, error)
}

func (s *stubApplications) Apply(ctx context.Context, actor *models.Actor, req *services.ApplyRequest, resume *services.ResumeUpload) (*models.Application, error) {
	return s.apply(ctx, actor, req, resume)
}

func (s *stubApplications) UpdateStatus(ctx context.Context, actor *models.Actor, req *services.UpdateStatusRequest) (*models.Application, error) {
	return s.updateStatus(ctx, actor, req)
}

type stubAuth struct {
	services.AuthService
	login func(ctx context.Context, req *services.LoginRequest) (*services.LoginResult, error)
}

func (s *stubAuth) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResult, error) {
	return s.login(ctx, req)
}

func newTestHandler() *Handler {
	return &Handler{
		jobs:         &stubJobs{},
		applications: &stubApplications{},
		auth:         &stubAuth{},
		authConfig:   config.AuthConfig{CookieName: "jobportal_session", CookieSecure: true},
		maxUpload:    1024,
		responses:    response.NewBuilder(response.DefaultConfig(), zap.NewNop()),
		decoder:      newDecoder(),
		logger:       zap.NewNop(),
	}
}

func withActor(req *http.Request, actor *models.Actor) *http.Request {
	return req.WithContext(contextutils.WithActor(req.Context(), actor))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile(resumeFormField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestJobIndexDecodesCriteriaAndWritesPagination(t *testing.T) {
	h := newTestHandler()

	var got jobquery.Criteria
	h.jobs = &stubJobs{search: func(_ context.Context, criteria jobquery.Criteria) (*services.JobSearchResult, error) {
		got = criteria
		return &services.JobSearchResult{
			Jobs: &models.PaginatedResponse[*models.Job]{
				Data:       []*models.Job{{ID: 7, Title: "Backend Engineer"}},
				Pagination: models.NewPaginationMeta(2, 10, 11),
			},
			Facets:   &jobquery.Facets{},
			Criteria: criteria,
		}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/Job/Index?Keyword=go&MinSalary=50000&Remote=true&Page=2&unknown=1", nil)
	rec := httptest.NewRecorder()
	h.JobIndex(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "go", got.Keyword)
	require.NotNil(t, got.MinSalary)
	assert.Equal(t, 50000.0, *got.MinSalary)
	assert.True(t, got.Remote)
	assert.Equal(t, 2, got.Page)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	pagination := body["meta"].(map[string]interface{})["pagination"].(map[string]interface{})
	assert.Equal(t, float64(11), pagination["total"])
	assert.Equal(t, float64(2), pagination["total_pages"])
	assert.Equal(t, true, pagination["has_prev"])
}

func TestJobIndexTreatsBlankFormFieldsAsAbsent(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		maxSalary     *float64
		sortBy        jobquery.SortKey
		ascending     bool
		expectKeyword string
	}{
		{
			name:          "search form with most fields empty",
			query:         "Keyword=backend&Location=&JobType=&MinSalary=&MaxSalary=&Company=&Tags=&Remote=&SortBy=title&SortAscending=&Page=&PageSize=",
			sortBy:        jobquery.SortTitle,
			ascending:     true,
			expectKeyword: "backend",
		},
		{
			name:      "every field empty",
			query:     "Keyword=&Location=&JobType=&MinSalary=&MaxSalary=&Company=&Tags=&Remote=&SortBy=&SortAscending=&Page=&PageSize=",
			sortBy:    jobquery.SortDate,
			ascending: false,
		},
		{
			name:      "filled values still apply",
			query:     "Keyword=&MinSalary=&MaxSalary=80000&SortBy=salary&SortAscending=false&Page=&PageSize=",
			maxSalary: func() *float64 { v := 80000.0; return &v }(),
			sortBy:    jobquery.SortSalary,
			ascending: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()

			var got jobquery.Criteria
			h.jobs = &stubJobs{search: func(_ context.Context, criteria jobquery.Criteria) (*services.JobSearchResult, error) {
				got = criteria
				return &services.JobSearchResult{
					Jobs:     &models.PaginatedResponse[*models.Job]{Data: []*models.Job{}, Pagination: models.NewPaginationMeta(1, 10, 0)},
					Facets:   &jobquery.Facets{},
					Criteria: criteria,
				}, nil
			}}

			rec := httptest.NewRecorder()
			h.JobIndex(rec, httptest.NewRequest(http.MethodGet, "/Job/Index?"+tt.query, nil))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			assert.Equal(t, tt.expectKeyword, got.Keyword)
			assert.Nil(t, got.MinSalary)
			assert.Equal(t, tt.maxSalary, got.MaxSalary)
			assert.False(t, got.Remote)

			q := got.Normalize(jobquery.DefaultPageSize)
			assert.Equal(t, tt.sortBy, q.SortBy)
			assert.Equal(t, tt.ascending, q.Ascending)
			assert.Equal(t, 1, q.Page)
			assert.Equal(t, jobquery.DefaultPageSize, q.PageSize)
		})
	}
}

func TestJobIndexBlankSortAscendingIsNil(t *testing.T) {
	h := newTestHandler()

	var criteria jobquery.Criteria
	values := url.Values{"SortBy": {"title"}, "SortAscending": {""}, "MinSalary": {""}}
	require.NoError(t, h.decodeValues(values, &criteria))

	assert.Nil(t, criteria.SortAscending)
	assert.Nil(t, criteria.MinSalary)
	assert.Nil(t, criteria.MaxSalary)
}

func TestJobIndexRejectsMalformedNumbers(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/Job/Index?MinSalary=lots", nil)
	rec := httptest.NewRecorder()
	h.JobIndex(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	detail := body["error"].(map[string]interface{})
	fields := detail["fields"].([]interface{})
	require.Len(t, fields, 1)
	assert.Equal(t, "MinSalary", fields[0].(map[string]interface{})["field"])
}

func TestJobDetailsReadsPathID(t *testing.T) {
	h := newTestHandler()
	h.jobs = &stubJobs{get: func(_ context.Context, id int64) (*models.Job, error) {
		if id != 42 {
			return nil, services.NewNotFoundError("job not found")
		}
		return &models.Job{ID: 42}, nil
	}}

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/Job/Details/42", nil), map[string]string{"id": "42"})
	rec := httptest.NewRecorder()
	h.JobDetails(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/Job/Details/x", nil), map[string]string{"id": "x"})
	rec = httptest.NewRecorder()
	h.JobDetails(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostJobFromFormWithBlankExpiry(t *testing.T) {
	h := newTestHandler()
	actor := &models.Actor{UserID: "u-1", Email: "alice@co.com", Role: models.RoleEmployer}

	var got *services.PostJobRequest
	h.jobs = &stubJobs{post: func(_ context.Context, a *models.Actor, req *services.PostJobRequest) (*models.Job, error) {
		assert.Equal(t, actor, a)
		got = req
		return &models.Job{ID: 3, Title: req.Title}, nil
	}}

	form := url.Values{
		"Title":      {"Backend Engineer"},
		"Company":    {"Acme"},
		"Location":   {"Remote"},
		"JobType":    {"Remote"},
		"Salary":     {"90000"},
		"ExpiryDate": {""},
	}
	req := httptest.NewRequest(http.MethodPost, "/Job/Post", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.PostJob(rec, withActor(req, actor))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, got)
	assert.Equal(t, "Backend Engineer", got.Title)
	assert.Equal(t, 90000.0, got.Salary)
	assert.Nil(t, got.ExpiryDate)
}

func TestPostJobFromJSONWithExpiry(t *testing.T) {
	h := newTestHandler()

	var got *services.PostJobRequest
	h.jobs = &stubJobs{post: func(_ context.Context, _ *models.Actor, req *services.PostJobRequest) (*models.Job, error) {
		got = req
		return &models.Job{ID: 4}, nil
	}}

	body := `{"title":"Data Engineer","company":"Acme","location":"Paris","job_type":"FullTime","expiry_date":"2030-01-31T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/Job/Post", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.PostJob(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got.ExpiryDate)
	assert.True(t, got.ExpiryDate.Equal(time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)))
}

func TestApplyMultipart(t *testing.T) {
	h := newTestHandler()
	actor := &models.Actor{UserID: "u-9", Email: "carol@mail.com", Role: models.RoleApplicant}

	var gotReq *services.ApplyRequest
	var gotResume []byte
	var gotName string
	h.applications = &stubApplications{apply: func(_ context.Context, _ *models.Actor, req *services.ApplyRequest, resume *services.ResumeUpload) (*models.Application, error) {
		gotReq = req
		require.NotNil(t, resume)
		gotName = resume.Filename
		content, err := io.ReadAll(resume.Content)
		require.NoError(t, err)
		gotResume = content
		return &models.Application{ID: 11, JobID: req.JobID}, nil
	}}

	body, contentType := multipartBody(t, map[string]string{
		"ApplicantName":  "Carol",
		"ApplicantEmail": "carol@mail.com",
	}, "cv.pdf", []byte("%PDF-1.4"))

	req := httptest.NewRequest(http.MethodPost, "/Application/Apply?jobId=5", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Apply(rec, withActor(req, actor))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, int64(5), gotReq.JobID)
	assert.Equal(t, "Carol", gotReq.ApplicantName)
	assert.Equal(t, "cv.pdf", gotName)
	assert.Equal(t, []byte("%PDF-1.4"), gotResume)
}

func TestApplyWithoutResumePassesNilUpload(t *testing.T) {
	h := newTestHandler()

	called := false
	h.applications = &stubApplications{apply: func(_ context.Context, _ *models.Actor, _ *services.ApplyRequest, resume *services.ResumeUpload) (*models.Application, error) {
		called = true
		assert.Nil(t, resume)
		return nil, services.NewFieldError(resumeFormField, "Resume is required", "REQUIRED")
	}}

	body, contentType := multipartBody(t, map[string]string{"JobId": "5", "ApplicantName": "Carol"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/Application/Apply", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Apply(rec, req)

	assert.True(t, called)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeEnvelope(t, rec)["error"].(map[string]interface{})["fields"].([]interface{})
	assert.Equal(t, resumeFormField, fields[0].(map[string]interface{})["field"])
}

func TestApplyRejectsOversizeBody(t *testing.T) {
	h := newTestHandler()
	h.applications = &stubApplications{apply: func(context.Context, *models.Actor, *services.ApplyRequest, *services.ResumeUpload) (*models.Application, error) {
		t.Fatal("oversize upload reached the service")
		return nil, nil
	}}

	body, contentType := multipartBody(t, map[string]string{"JobId": "5"}, "cv.pdf", bytes.Repeat([]byte("a"), formOverhead+2048))
	req := httptest.NewRequest(http.MethodPost, "/Application/Apply", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Apply(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeEnvelope(t, rec)["error"].(map[string]interface{})["fields"].([]interface{})
	assert.Equal(t, "TOO_LARGE", fields[0].(map[string]interface{})["code"])
}

func TestUpdateApplicationStatusFromForm(t *testing.T) {
	h := newTestHandler()

	var got *services.UpdateStatusRequest
	h.applications = &stubApplications{updateStatus: func(_ context.Context, _ *models.Actor, req *services.UpdateStatusRequest) (*models.Application, error) {
		got = req
		return &models.Application{ID: req.ApplicationID, Status: models.ApplicationStatusShortlisted}, nil
	}}

	form := url.Values{"ApplicationId": {"8"}, "Status": {"shortlisted"}, "Feedback": {"strong"}}
	req := httptest.NewRequest(http.MethodPost, "/Employer/UpdateApplicationStatus", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.UpdateApplicationStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(8), got.ApplicationID)
	assert.Equal(t, "shortlisted", got.Status)
	assert.Equal(t, "strong", got.Feedback)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := newTestHandler()
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	h.auth = &stubAuth{login: func(_ context.Context, req *services.LoginRequest) (*services.LoginResult, error) {
		if req.Password != "secret-pass" {
			return nil, services.NewUnauthorizedError("invalid email or password")
		}
		return &services.LoginResult{Token: "tok", ExpiresAt: expires, User: &models.User{Email: req.Email}}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/Account/Login", strings.NewReader(`{"email":"a@b.com","password":"secret-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jobportal_session", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req = httptest.NewRequest(http.MethodPost, "/Account/Login", strings.NewReader(`{"email":"a@b.com","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogoutExpiresCookie(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/Account/Logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}

func TestDeleteJobReturnsDeletedID(t *testing.T) {
	h := newTestHandler()
	h.jobs = &stubJobs{delete: func(_ context.Context, _ *models.Actor, id int64) error {
		if id != 3 {
			return services.NewNotFoundError("job not found")
		}
		return nil
	}}

	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/Admin/DeleteJob/3", nil), map[string]string{"id": "3"})
	rec := httptest.NewRecorder()
	h.DeleteJob(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["deleted_job_id"])

	req = mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/Admin/DeleteJob/4", nil), map[string]string{"id": "4"})
	rec = httptest.NewRecorder()
	h.DeleteJob(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthStatusCodes(t *testing.T) {
	tests := []struct {
		status   string
		expected int
	}{
		{database.StatusHealthy, http.StatusOK},
		{database.StatusDegraded, http.StatusOK},
		{database.StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			h := newTestHandler()
			h.health = func(context.Context) *services.ServiceHealth {
				return &services.ServiceHealth{Status: tt.status}
			}

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expected, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}
}
