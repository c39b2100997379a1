package web

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"jobportal/internal/services"
)

const (
	resumeFormField = "ResumeFile"
	// formOverhead covers the text fields sent alongside the resume
	formOverhead = 1 << 20
)

// ApplyForm returns the job an applicant is about to apply to
func (h *Handler) ApplyForm(w http.ResponseWriter, r *http.Request) {
	jobID, _ := strconv.ParseInt(r.URL.Query().Get("jobId"), 10, 64)

	job, err := h.applications.JobForApplication(r.Context(), jobID)
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccess(w, r, job)
}

// Apply accepts an application with its resume as multipart form data
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)
	}

	if err := r.ParseMultipartForm(formOverhead); err != nil {
		if isBodyTooLarge(err) {
			h.responses.WriteError(w, r, services.NewFieldError(resumeFormField, "File size exceeds the maximum limit", "TOO_LARGE"))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			h.responses.WriteError(w, r, services.NewValidationError("invalid form data", err))
			return
		}
		if err := r.ParseForm(); err != nil {
			h.responses.WriteError(w, r, services.NewValidationError("invalid form data", err))
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var req services.ApplyRequest
	if err := h.decodeValues(r.Form, &req); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}
	if req.JobID == 0 {
		req.JobID, _ = strconv.ParseInt(r.URL.Query().Get("jobId"), 10, 64)
	}

	upload, closeFile, err := resumeFrom(r)
	if err != nil {
		h.responses.WriteError(w, r, services.NewValidationError("invalid resume upload", err))
		return
	}
	defer closeFile()

	app, err := h.applications.Apply(r.Context(), actorFrom(r), &req, upload)
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteCreated(w, r, app)
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

// resumeFrom returns the uploaded resume, or nil when none was sent
func resumeFrom(r *http.Request) (*services.ResumeUpload, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}

	file, header, err := r.FormFile(resumeFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, err
	}

	return uploadFrom(file, header), func() { file.Close() }, nil
}

func uploadFrom(file multipart.File, header *multipart.FileHeader) *services.ResumeUpload {
	return &services.ResumeUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}
}

// MyApplications lists the signed-in user's own applications
func (h *Handler) MyApplications(w http.ResponseWriter, r *http.Request) {
	result, err := h.applications.MyApplications(r.Context(), actorFrom(r), queryInt(r, "page"))
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccessWithPagination(w, r, result, result.Applications.Pagination)
}

// ApplicationDetails shows one of the signed-in user's applications
func (h *Handler) ApplicationDetails(w http.ResponseWriter, r *http.Request) {
	detail, err := h.applications.GetMyApplication(r.Context(), actorFrom(r), pathID(r))
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteSuccess(w, r, detail)
}

// DownloadResume serves a locally stored resume file
func (h *Handler) DownloadResume(w http.ResponseWriter, r *http.Request) {
	if h.resumes == nil {
		h.responses.WriteError(w, r, services.NewNotFoundError("resume not found"))
		return
	}

	file, err := h.resumes.Open(r.URL.Path)
	if err != nil {
		h.responses.WriteError(w, r, services.NewNotFoundError("resume not found"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		h.responses.WriteError(w, r, services.NewNotFoundError("resume not found"))
		return
	}

	w.Header().Set("Content-Disposition", "attachment")
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
