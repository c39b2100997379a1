package web

import (
	"net/http"
	"time"

	"jobportal/internal/services"
)

// Register creates an employer or applicant account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	h.responses.WriteCreated(w, r, user)
}

// Login checks credentials, sets the session cookie and returns the token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		h.responses.WriteError(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, result.ExpiresAt))
	h.responses.WriteSuccess(w, r, result)
}

// Logout clears the session cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := h.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)

	h.responses.WriteSuccess(w, r, map[string]bool{"signed_out": true})
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.authConfig.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.authConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
