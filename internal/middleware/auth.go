// file: internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"jobportal/internal/contextutils"
	"jobportal/internal/models"
	"jobportal/internal/response"
	"jobportal/internal/services"

	"go.uber.org/zap"
)

// TokenParser verifies a session token and returns its actor
type TokenParser interface {
	ParseToken(token string) (*models.Actor, error)
}

// Authenticator resolves the actor of a request from its session token
type Authenticator struct {
	tokens     TokenParser
	cookieName string
	responses  *response.Builder
}

// NewAuthenticator creates the authentication middleware. Tokens are read
// from an "Authorization: Bearer" header first, then from cookieName.
func NewAuthenticator(tokens TokenParser, cookieName string, responses *response.Builder) *Authenticator {
	return &Authenticator{tokens: tokens, cookieName: cookieName, responses: responses}
}

// authErrorKey holds the reason a presented token was rejected
const authErrorKey ContextKey = "auth_error"

// Authenticate attaches the actor to the request context when a valid token
// is present. Other requests continue anonymously, so public pages stay
// reachable with a stale cookie.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := a.tokens.ParseToken(token)
		if err != nil {
			GetRequestLogger(r.Context()).Info("Rejected session token", zap.Error(err))
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authErrorKey, err)))
			return
		}

		requestLogger := GetRequestLogger(r.Context()).With(
			zap.String("user_id", actor.UserID),
			zap.String("role", string(actor.Role)),
		)
		ctx := contextutils.WithActor(r.Context(), actor)
		ctx = contextutils.WithLogger(ctx, requestLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous requests with 401
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contextutils.GetActor(r.Context()) == nil {
			if err, ok := r.Context().Value(authErrorKey).(error); ok {
				a.responses.WriteError(w, r, err)
				return
			}
			a.responses.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and actors holding none of
// roles with 403
func (a *Authenticator) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := contextutils.GetActor(r.Context())
			if !actor.HasRole(roles...) {
				GetRequestLogger(r.Context()).Info("Role check failed",
					zap.String("role", string(actor.Role)),
				)
				a.responses.WriteError(w, r, services.NewForbiddenError("you do not have access to this page"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func (a *Authenticator) extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if a.cookieName != "" {
		if cookie, err := r.Cookie(a.cookieName); err == nil {
			return cookie.Value
		}
	}

	return ""
}
