package web

import (
	"encoding/json"
	"net/http"

	"jobportal/internal/database"
)

// Health reports the state of the database and cache
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.health(r.Context())

	status := http.StatusOK
	if health.Status == database.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(health)
}
