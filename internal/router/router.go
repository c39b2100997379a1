package router

import (
	"net/http"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/handlers/web"
	"jobportal/internal/middleware"
	"jobportal/internal/models"
	"jobportal/internal/response"
	"jobportal/internal/services"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const slowRequestThreshold = 2 * time.Second

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(h *web.Handler, auth *middleware.Authenticator, responses *response.Builder, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(w, req, services.NewNotFoundError("page not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(w, req, &services.ServiceError{
			Type:       services.ErrorTypeValidation,
			Message:    "method not allowed",
			StatusCode: http.StatusMethodNotAllowed,
		})
	})

	anyUser := auth.RequireAuth
	employers := auth.RequireRole(models.RoleEmployer)
	admins := auth.RequireRole(models.RoleAdmin)
	posters := auth.RequireRole(models.RoleAdmin, models.RoleEmployer)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Account
	account := r.PathPrefix("/Account").Subrouter()
	account.HandleFunc("/Register", h.Register).Methods(http.MethodPost)
	account.HandleFunc("/Login", h.Login).Methods(http.MethodPost)
	account.HandleFunc("/Logout", h.Logout).Methods(http.MethodPost)

	// Job
	job := r.PathPrefix("/Job").Subrouter()
	job.HandleFunc("/Index", h.JobIndex).Methods(http.MethodGet)
	job.Handle("/Details/{id:[0-9]+}", anyUser(http.HandlerFunc(h.JobDetails))).Methods(http.MethodGet)
	job.Handle("/Post", posters(http.HandlerFunc(h.PostJob))).Methods(http.MethodPost)
	job.Handle("/MyJobs", employers(http.HandlerFunc(h.MyJobs))).Methods(http.MethodGet)

	// Application
	application := r.PathPrefix("/Application").Subrouter()
	application.Handle("/Apply", anyUser(http.HandlerFunc(h.ApplyForm))).Methods(http.MethodGet)
	application.Handle("/Apply", anyUser(http.HandlerFunc(h.Apply))).Methods(http.MethodPost)
	application.Handle("/MyApplications", anyUser(http.HandlerFunc(h.MyApplications))).Methods(http.MethodGet)
	application.Handle("/Details/{id:[0-9]+}", anyUser(http.HandlerFunc(h.ApplicationDetails))).Methods(http.MethodGet)

	// Employer
	employer := r.PathPrefix("/Employer").Subrouter()
	employer.Handle("/Dashboard", employers(http.HandlerFunc(h.EmployerDashboard))).Methods(http.MethodGet)
	employer.Handle("/Jobs", employers(http.HandlerFunc(h.EmployerJobs))).Methods(http.MethodGet)
	employer.Handle("/Applications", employers(http.HandlerFunc(h.EmployerApplications))).Methods(http.MethodGet)
	employer.Handle("/ApplicationDetails/{id:[0-9]+}", employers(http.HandlerFunc(h.ReviewApplication))).Methods(http.MethodGet)
	employer.Handle("/ApplicationDetails/{id:[0-9]+}", employers(http.HandlerFunc(h.ReviewApplicationSubmit))).Methods(http.MethodPost)
	employer.Handle("/UpdateApplicationStatus", employers(http.HandlerFunc(h.UpdateApplicationStatus))).Methods(http.MethodPost)

	// Admin
	admin := r.PathPrefix("/Admin").Subrouter()
	admin.Handle("/Dashboard", admins(http.HandlerFunc(h.AdminDashboard))).Methods(http.MethodGet)
	admin.Handle("/Jobs", admins(http.HandlerFunc(h.AdminJobs))).Methods(http.MethodGet)
	admin.Handle("/Applications", admins(http.HandlerFunc(h.AdminApplications))).Methods(http.MethodGet)
	admin.Handle("/DeleteJob/{id:[0-9]+}", admins(http.HandlerFunc(h.DeleteJob))).
		Methods(http.MethodGet, http.MethodPost, http.MethodDelete)
	admin.Handle("/DeleteApplication/{id:[0-9]+}", admins(http.HandlerFunc(h.DeleteApplication))).
		Methods(http.MethodGet, http.MethodPost, http.MethodDelete)

	// Locally stored resumes
	if cfg.Resume.Storage == "" || cfg.Resume.Storage == "local" {
		r.PathPrefix(cfg.Resume.PathPrefix).Handler(anyUser(http.HandlerFunc(h.DownloadResume))).Methods(http.MethodGet)
	}

	var handler http.Handler = r
	handler = auth.Authenticate(handler)
	handler = chimiddleware.Compress(5, "application/json")(handler)
	handler = middleware.SecureHeaders(handler)
	handler = middleware.Recover(responses)(handler)
	handler = middleware.RequestLogger(slowRequestThreshold)(handler)
	handler = middleware.RequestID(logger)(handler)
	handler = chimiddleware.RealIP(handler)

	return handler
}
