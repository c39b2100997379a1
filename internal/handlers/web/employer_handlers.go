package web

import (
	"net/http"

	"jobportal/internal/response"
	"jobportal/internal/services"
)

// EmployerDashboard serves the employer's counts and recent applications
func (h *Handler) EmployerDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboards.EmployerDashboard(r.Context(), actorFrom(r))
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccess(w, r, dashboard)
}

// EmployerJobs lists the employer's own postings
func (h *Handler) EmployerJobs(w http.ResponseWriter, r *http.Request) {
	h.listJobs(w, r)
}

// EmployerApplications lists applications to the employer's jobs
func (h *Handler) EmployerApplications(w http.ResponseWriter, r *http.Request) {
	h.listApplications(w, r)
}

// ReviewApplication shows an application to its employer and records the
// first view
func (h *Handler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	detail, err := h.applications.ReviewApplication(r.Context(), actorFrom(r), pathID(r))
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccess(w, r, detail)
}

// ReviewApplicationSubmit updates the status of the application in the path
func (h *Handler) ReviewApplicationSubmit(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateStatusRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}
	req.ApplicationID = pathID(r)

	h.updateStatus(w, r, &req)
}

// UpdateApplicationStatus updates the status of the application named in
// the form
func (h *Handler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateStatusRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.updateStatus(w, r, &req)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, req *services.UpdateStatusRequest) {
	app, err := h.applications.UpdateStatus(r.Context(), actorFrom(r), req)
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccess(w, r, app)
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	var req services.ListApplicationsRequest
	if err := h.decodeQuery(r, &req); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	page, err := h.applications.ListApplications(r.Context(), actorFrom(r), req)
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	response.WritePaginated(h.responses, w, r, page)
}
