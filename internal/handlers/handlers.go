package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/s/learnhub/internal/access"
	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/config"
	"github.com/s/learnhub/internal/logger"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/payment"
	"github.com/s/learnhub/internal/progress"
	"github.com/s/learnhub/internal/session"
	"github.com/s/learnhub/internal/storage"
	"github.com/s/learnhub/internal/validation"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	API       *api.Client
	Sessions  *session.Manager
	Tracker   *progress.Tracker
	Submitter *payment.Submitter
	Validate  *validation.Validator
	Activity  storage.ActivityLog
	Log       logger.Logger
	Config    *config.Config
}

func NewHandler(conf *config.Config, client *api.Client, sessions *session.Manager, journal progress.Journal, activity storage.ActivityLog, lg logger.Logger) *Handler {
	v := validation.New(conf.TxRefMinLength)
	if activity == nil {
		activity = storage.NewMemoryActivityLog()
	}
	if lg == nil {
		lg = logger.NewStdLogger(nil)
	}
	return &Handler{
		API:       client,
		Sessions:  sessions,
		Tracker:   progress.NewTracker(journal),
		Submitter: payment.NewSubmitter(v, conf.AccessSource),
		Validate:  v,
		Activity:  activity,
		Log:       lg,
		Config:    conf,
	}
}

// CurrentSession returns the session the middleware attached to r.
func (h *Handler) CurrentSession(r *http.Request) (*session.Session, bool) {
	return session.FromContext(r.Context())
}

// Backend returns an API client acting as the session user, or an
// anonymous one when there is no session.
func (h *Handler) Backend(r *http.Request) *api.Client {
	if sess, ok := h.CurrentSession(r); ok {
		return h.API.WithToken(sess.Token)
	}
	return h.API
}

func (h *Handler) Resolver(b access.Backend) *access.Resolver {
	return access.NewResolver(access.NewSource(h.Config.AccessSource, b))
}

// Record appends to the activity log. A failure is logged and otherwise
// ignored; it never fails the request.
func (h *Handler) Record(ctx context.Context, userID models.ID, action string, details interface{}) {
	if err := h.Activity.Record(ctx, userID, action, details); err != nil {
		h.Log.Warn("activity log write failed", err, map[string]interface{}{"user_id": userID, "action": action})
	}
}

type errorBody struct {
	Error    string                  `json:"error"`
	Code     int                     `json:"code"`
	Fields   []validation.FieldError `json:"fields,omitempty"`
	LoginURL string                  `json:"login_url,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func JSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, errorBody{Error: message, Code: code})
}

// DecodeJSON reads a JSON request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("invalid JSON payload")
	}
	return nil
}

// Unauthorized drops the session and points the client at the login flow.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	if err := h.Sessions.Destroy(w, r); err != nil {
		h.Log.Warn("destroy session", err)
	}
	WriteJSON(w, http.StatusUnauthorized, errorBody{
		Error:    message,
		Code:     http.StatusUnauthorized,
		LoginURL: h.Config.LoginURL,
	})
}

// Fail turns err into a JSON error response.
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Code: http.StatusBadRequest, Fields: verr.Fields})
	case errors.Is(err, payment.ErrAlreadyPending), errors.Is(err, payment.ErrAlreadyOwned):
		JSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, payment.ErrInvalidTransition):
		JSONError(w, "only pending payments can be reviewed", http.StatusConflict)
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrExpired):
		h.Unauthorized(w, r, "your session has ended, please log in again")
	case errors.Is(err, payment.ErrStateUnknown):
		h.Log.Warn("payment refused, access state unknown", err, map[string]interface{}{"path": r.URL.Path})
		JSONError(w, payment.ErrStateUnknown.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		JSONError(w, "the request took too long", http.StatusGatewayTimeout)
	default:
		code := api.StatusCode(err)
		if code >= http.StatusInternalServerError {
			h.Log.Error("backend request failed", err, map[string]interface{}{"method": r.Method, "path": r.URL.Path})
		}
		JSONError(w, api.Message(err), code)
	}
}

// Forbidden answers 403 with the purchase state, so the client can show
// the purchase control or the pending notice.
func Forbidden(w http.ResponseWriter, message string, res access.Result) {
	WriteJSON(w, http.StatusForbidden, map[string]interface{}{
		"error":  message,
		"code":   http.StatusForbidden,
		"access": res,
	})
}

func queryItemType(s string) models.ItemType {
	return models.ItemType(strings.ToLower(strings.TrimSpace(s)))
}
