package web

import (
	"net/http"

	"jobportal/internal/jobquery"
	"jobportal/internal/response"
	"jobportal/internal/services"

	"go.uber.org/zap"
)

// JobIndex serves the public job search
func (h *Handler) JobIndex(w http.ResponseWriter, r *http.Request) {
	var criteria jobquery.Criteria
	if err := h.decodeQuery(r, &criteria); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	result, err := h.jobs.Search(r.Context(), criteria)
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccessWithPagination(w, r, result, result.Jobs.Pagination)
}

// JobDetails shows one job to a signed-in user
func (h *Handler) JobDetails(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJob(r.Context(), pathID(r))
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccess(w, r, job)
}

// PostJob creates a job for an employer or admin
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	var req services.PostJobRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}
	if req.ExpiryDate != nil && req.ExpiryDate.IsZero() {
		req.ExpiryDate = nil
	}

	job, err := h.jobs.PostJob(r.Context(), actorFrom(r), &req)
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.requestLogger(r).Info("Job posted", zap.Int64("job_id", job.ID))
	h.responses.WriteCreated(w, r, job)
}

// MyJobs lists the signed-in employer's postings
func (h *Handler) MyJobs(w http.ResponseWriter, r *http.Request) {
	h.listJobs(w, r)
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	var req services.ListJobsRequest
	if err := h.decodeQuery(r, &req); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	page, err := h.jobs.ListJobs(r.Context(), actorFrom(r), req)
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	response.WritePaginated(h.responses, w, r, page)
}
