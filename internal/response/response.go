package response

import (
	"encoding/json"
	"net/http"

	"jobportal/internal/contextutils"
	"jobportal/internal/models"
	"jobportal/internal/services"

	"go.uber.org/zap"
)

const maskedMessage = "An internal error occurred. Please try again later."

// Config holds configuration for the response writer
type Config struct {
	PrettyJSON         bool
	MaskInternalErrors bool
}

// DefaultConfig returns production response configuration
func DefaultConfig() *Config {
	return &Config{MaskInternalErrors: true}
}

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success   bool          `json:"success"`
	Data      interface{}   `json:"data,omitempty"`
	Error     *ErrorDetail  `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Type    string                `json:"type"`
	Message string                `json:"message"`
	Code    string                `json:"code,omitempty"`
	Fields  []services.FieldError `json:"fields,omitempty"`
}

// ResponseMeta carries data about the payload
type ResponseMeta struct {
	Pagination *models.PaginationMeta `json:"pagination,omitempty"`
}

// Builder writes JSON envelopes
type Builder struct {
	config *Config
	logger *zap.Logger
}

// NewBuilder creates a new response builder
func NewBuilder(config *Config, logger *zap.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{config: config, logger: logger}
}

// WriteSuccess writes data with status 200
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.write(w, r, http.StatusOK, &APIResponse{Success: true, Data: data})
}

// WriteCreated writes data with status 201
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.write(w, r, http.StatusCreated, &APIResponse{Success: true, Data: data})
}

// WriteSuccessWithPagination writes data with status 200 and a pagination block
func (b *Builder) WriteSuccessWithPagination(w http.ResponseWriter, r *http.Request, data interface{}, pagination models.PaginationMeta) {
	b.write(w, r, http.StatusOK, &APIResponse{
		Success: true,
		Data:    data,
		Meta:    &ResponseMeta{Pagination: &pagination},
	})
}

// WritePaginated writes one page of results with its pagination block
func WritePaginated[T any](b *Builder, w http.ResponseWriter, r *http.Request, page *models.PaginatedResponse[T]) {
	b.WriteSuccessWithPagination(w, r, page.Data, page.Pagination)
}

// WriteError writes err with the status its type maps to
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)

	detail := &ErrorDetail{
		Type:    serviceErr.Type,
		Message: serviceErr.Message,
		Code:    serviceErr.Code,
		Fields:  services.GetFieldErrors(err),
	}

	logger := contextutils.GetLogger(r.Context(), b.logger)
	status := serviceErr.GetStatusCode()
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err), zap.String("type", serviceErr.Type))
		if b.config.MaskInternalErrors {
			detail.Message = maskedMessage
		}
	} else {
		logger.Debug("Request rejected", zap.Error(err), zap.String("type", serviceErr.Type))
	}

	b.write(w, r, status, &APIResponse{Success: false, Error: detail})
}

func (b *Builder) write(w http.ResponseWriter, r *http.Request, status int, body *APIResponse) {
	body.RequestID = contextutils.GetRequestID(r.Context())

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if b.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(body); err != nil {
		b.logger.Error("Failed to encode JSON response",
			zap.Error(err),
			zap.String("request_id", body.RequestID),
		)
	}
}
