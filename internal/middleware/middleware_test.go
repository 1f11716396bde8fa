package middleware

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/config"
	"github.com/s/learnhub/internal/handlers"
	"github.com/s/learnhub/internal/logger"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/session"
)

func newHandler() *handlers.Handler {
	conf := &config.Config{LoginURL: "https://login.example/", TxRefMinLength: 8}
	return handlers.NewHandler(conf, api.New("http://backend.invalid"),
		session.NewManager([]byte("0123456789abcdef0123456789abcdef"), 3600, false),
		nil, nil, logger.NewStdLogger(log.New(io.Discard, "", 0)))
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }

func withSession(r *http.Request, u models.User) *http.Request {
	return r.WithContext(session.WithSession(r.Context(), &session.Session{Token: "t", User: u}))
}

func TestRequiredRole(t *testing.T) {
	h := newHandler()
	gate := RequiredRole(h, models.RoleAdmin)(ok)

	cases := []struct {
		name string
		user *models.User
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"user", &models.User{ID: "u1", Role: models.RoleUser}, http.StatusForbidden},
		{"inactive admin", &models.User{ID: "a1", Role: models.RoleAdmin, Status: models.UserInactive}, http.StatusForbidden},
		{"admin", &models.User{ID: "a1", Role: models.RoleAdmin, Status: models.UserActive}, http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
			if tc.user != nil {
				r = withSession(r, *tc.user)
			}
			rec := httptest.NewRecorder()
			gate(rec, r)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestLoadSessionFromCookie(t *testing.T) {
	h := newHandler()
	saved := httptest.NewRecorder()
	require.NoError(t, h.Sessions.Save(saved, httptest.NewRequest(http.MethodGet, "/", nil),
		&session.Session{Token: "tok", User: models.User{ID: "u1", Role: models.RoleUser}}))

	var got *session.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(saved.Result().Cookies()[0])
	LoadSession(h)(next).ServeHTTP(httptest.NewRecorder(), r)
	require.NotNil(t, got)
	assert.Equal(t, "tok", got.Token)

	got = nil
	LoadSession(h)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, got)
}

func TestRequestLogKeepsValidID(t *testing.T) {
	const id = "8c1a3b9e-4f55-4c1f-9f57-5a4c0b2f8e11"
	var seen string
	handler := RequestLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, id, seen)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "not a uuid")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.NotEqual(t, "not a uuid", seen)
	assert.Len(t, seen, 36)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var hasDeadline bool
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestCORS(t *testing.T) {
	handler := CORS("https://app.example")(http.HandlerFunc(ok))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/payments", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
