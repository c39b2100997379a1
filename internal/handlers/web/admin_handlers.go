package web

import (
	"net/http"

	"go.uber.org/zap"
)

// AdminDashboard serves the site-wide counts
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboards.AdminDashboard(r.Context(), actorFrom(r))
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccess(w, r, dashboard)
}

// AdminJobs lists every job
func (h *Handler) AdminJobs(w http.ResponseWriter, r *http.Request) {
	h.listJobs(w, r)
}

// AdminApplications lists every application
func (h *Handler) AdminApplications(w http.ResponseWriter, r *http.Request) {
	h.listApplications(w, r)
}

// DeleteJob removes a job. Its applications are kept.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := h.jobs.DeleteJob(r.Context(), actorFrom(r), id); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.requestLogger(r).Info("Job deleted by admin", zap.Int64("job_id", id))
	h.responses.WriteSuccess(w, r, map[string]int64{"deleted_job_id": id})
}

// DeleteApplication removes an application and its resume
func (h *Handler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := h.applications.DeleteApplication(r.Context(), actorFrom(r), id); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccess(w, r, map[string]int64{"deleted_application_id": id})
}
