package middleware

import (
	"errors"
	"net/http"

	"github.com/s/learnhub/internal/handlers"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/session"
)

// LoadSession attaches the cookie session, when there is a valid one, to
// the request context. Requests without a session pass through unchanged.
func LoadSession(h *handlers.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := h.Sessions.Load(r)
			switch {
			case err == nil:
				r = r.WithContext(session.WithSession(r.Context(), sess))
			case errors.Is(err, session.ErrExpired):
				if derr := h.Sessions.Destroy(w, r); derr != nil {
					h.Log.Warn("destroy expired session", derr)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticated requires a logged-in user.
func Authenticated(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := h.CurrentSession(r); !ok {
				h.Unauthorized(w, r, "please log in to continue")
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

// RequiredRole requires a logged-in user holding role. Inactive accounts
// are refused as well.
func RequiredRole(h *handlers.Handler, role models.Role) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return Authenticated(h)(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := h.CurrentSession(r)

			if sess.User.Status == models.UserInactive {
				handlers.JSONError(w, "this account is deactivated", http.StatusForbidden)
				return
			}
			if sess.User.Role != role {
				handlers.JSONError(w, "access denied: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
