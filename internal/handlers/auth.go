package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/session"
)

// HandleAuthCallback ends the external login flow: it takes the bearer
// token, loads the user it belongs to and stores both in the session cookie.
func (h *Handler) HandleAuthCallback(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token = strings.TrimSpace(r.FormValue("token"))
	}
	if token == "" {
		JSONError(w, "missing token", http.StatusBadRequest)
		return
	}

	sess, err := session.New(token, time.Now())
	if err != nil {
		h.Unauthorized(w, r, "the login token is not valid")
		return
	}

	user, err := h.API.WithToken(token).GetUser(r.Context(), sess.User.ID)
	switch {
	case err == nil:
		if user.Role == "" {
			user.Role = sess.User.Role
		}
		if user.ID.IsZero() {
			user.ID = sess.User.ID
		}
		sess.User = *user
	case errors.Is(err, api.ErrUnauthorized):
		h.Unauthorized(w, r, "the login token was refused")
		return
	default:
		h.Log.Warn("load user at login, using token claims", err, sess.User)
	}

	if sess.User.Status == models.UserInactive {
		JSONError(w, "this account is deactivated", http.StatusForbidden)
		return
	}

	if err := h.Sessions.Save(w, r, sess); err != nil {
		h.Log.Error("save session", err, sess.User)
		JSONError(w, "could not start the session", http.StatusInternalServerError)
		return
	}
	h.Record(r.Context(), sess.User.ID, models.ActionLogin, map[string]string{"remote_addr": r.RemoteAddr})

	target := r.URL.Query().Get("redirect")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.CurrentSession(r); ok {
		h.Record(r.Context(), sess.User.ID, models.ActionLogout, nil)
	}
	if err := h.Sessions.Destroy(w, r); err != nil {
		h.Log.Warn("destroy session", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the session user.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.CurrentSession(r)
	if !ok {
		h.Unauthorized(w, r, "not logged in")
		return
	}
	resp := map[string]interface{}{"user": sess.User}
	if !sess.ExpiresAt.IsZero() {
		resp["expires_at"] = sess.ExpiresAt
	}
	WriteJSON(w, http.StatusOK, resp)
}
