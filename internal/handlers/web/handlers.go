// file: internal/handlers/web/handlers.go
package web

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/contextutils"
	"jobportal/internal/models"
	"jobportal/internal/response"
	"jobportal/internal/services"
	"jobportal/internal/storage"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"go.uber.org/zap"
)

// dateLayouts are accepted for date form fields, most specific first
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Handler serves the Job, Application, Employer, Admin and Account
// controllers
type Handler struct {
	jobs         services.JobService
	applications services.ApplicationService
	auth         services.AuthService
	dashboards   services.DashboardService
	health       func(ctx context.Context) *services.ServiceHealth
	resumes      *storage.LocalStore

	authConfig config.AuthConfig
	maxUpload  int64
	responses  *response.Builder
	decoder    *schema.Decoder
	logger     *zap.Logger
}

// NewHandler creates the web handlers over a service collection
func NewHandler(sc *services.ServiceCollection, responses *response.Builder, logger *zap.Logger) *Handler {
	h := &Handler{
		jobs:         sc.JobService,
		applications: sc.ApplicationService,
		auth:         sc.AuthService,
		dashboards:   sc.DashboardService,
		health:       sc.Health,
		authConfig:   sc.Config.Auth,
		maxUpload:    sc.Config.Resume.MaxBytes,
		responses:    responses,
		decoder:      newDecoder(),
		logger:       logger,
	}

	if local, ok := sc.ResumeStore.(*storage.LocalStore); ok {
		h.resumes = local
	}

	return h
}

func newDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(time.Time{}, func(value string) reflect.Value {
		value = strings.TrimSpace(value)
		if value == "" {
			return reflect.ValueOf(time.Time{})
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return reflect.ValueOf(t.UTC())
			}
		}
		return reflect.Value{}
	})
	return decoder
}

// decodeQuery fills dst from the URL query
func (h *Handler) decodeQuery(r *http.Request, dst interface{}) error {
	return h.decodeValues(r.URL.Query(), dst)
}

// decodeBody fills dst from a JSON body or from form values
func (h *Handler) decodeBody(r *http.Request, dst interface{}) error {
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return services.NewValidationError("invalid request body", err)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return services.NewValidationError("invalid form data", err)
	}
	return h.decodeValues(r.Form, dst)
}

func (h *Handler) decodeValues(values url.Values, dst interface{}) error {
	if err := h.decoder.Decode(dst, values); err != nil {
		return decodeError(err)
	}
	clearBlankPointers(values, dst)
	return nil
}

// clearBlankPointers resets pointer fields whose submitted value is blank.
// The schema decoder allocates a pointer before it sees the value, so an
// empty MinSalary= would otherwise arrive as a zero filter.
func clearBlankPointers(values url.Values, dst interface{}) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() != reflect.Ptr || !field.IsExported() {
			continue
		}
		key, _, _ := strings.Cut(field.Tag.Get("schema"), ",")
		if key == "" || key == "-" {
			key = field.Name
		}
		raw, ok := values[key]
		if ok && isBlank(raw) {
			v.Field(i).Set(reflect.Zero(field.Type))
		}
	}
}

func isBlank(raw []string) bool {
	for _, value := range raw {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// decodeError turns schema conversion failures into field errors
func decodeError(err error) error {
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return services.NewValidationError("invalid form data", err)
	}

	fields := make([]services.FieldError, 0, len(multi))
	for key := range multi {
		fields = append(fields, services.FieldError{
			Field:   key,
			Message: key + " has an invalid value",
			Code:    "INVALID",
		})
	}
	return services.NewDetailedValidationError("invalid form data", fields)
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// pathID reads the {id} route variable; a malformed id reads as 0, which
// the services report as not found
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func actorFrom(r *http.Request) *models.Actor {
	return contextutils.GetActor(r.Context())
}

func (h *Handler) requestLogger(r *http.Request) *zap.Logger {
	return contextutils.GetLogger(r.Context(), h.logger)
}
