package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/learnhub/internal/models"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tok := signed(t, jwt.MapClaims{"id": "u1", "role": "Admin", "name": "Ada", "exp": exp})

	c, err := ParseClaims(tok)
	require.NoError(t, err)
	assert.Equal(t, models.ID("u1"), c.UserID)
	assert.Equal(t, models.RoleAdmin, c.Role)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, exp, c.ExpiresAt.Unix())
}

func TestParseClaimsNumericSubject(t *testing.T) {
	c, err := ParseClaims(signed(t, jwt.MapClaims{"sub": 42}))
	require.NoError(t, err)
	assert.Equal(t, models.ID("42"), c.UserID)
}

func TestParseClaimsRejects(t *testing.T) {
	_, err := ParseClaims("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseClaims(signed(t, jwt.MapClaims{"role": "user"}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNew(t *testing.T) {
	now := time.Now()

	sess, err := New(signed(t, jwt.MapClaims{"user_id": "u7"}), now)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, sess.User.Role)
	assert.False(t, sess.IsAdmin())

	_, err = New(signed(t, jwt.MapClaims{"id": "u7", "exp": now.Add(-time.Minute).Unix()}), now)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager([]byte("0123456789abcdef0123456789abcdef"), 3600, false)
	sess := &Session{
		Token:     "tok",
		User:      models.User{ID: "u1", Name: "Ada", Role: models.RoleAdmin, Status: models.UserActive},
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	got, err := m.Load(r)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
	assert.Equal(t, sess.User, got.User)
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))
	assert.True(t, got.IsAdmin())
}

func TestManagerLoadMissing(t *testing.T) {
	m := NewManager([]byte("0123456789abcdef0123456789abcdef"), 3600, false)
	_, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManagerLoadExpired(t *testing.T) {
	m := NewManager([]byte("0123456789abcdef0123456789abcdef"), 3600, false)
	sess := &Session{Token: "tok", User: models.User{ID: "u1"}, ExpiresAt: time.Now().Add(time.Minute)}

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), sess))

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(rec.Result().Cookies()[0])
	_, err := m.Load(r)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManagerDestroy(t *testing.T) {
	m := NewManager([]byte("0123456789abcdef0123456789abcdef"), 3600, false)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Destroy(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := FromContext(r.Context())
	assert.False(t, ok)

	sess := &Session{Token: "t", User: models.User{ID: "u1"}}
	got, ok := FromContext(WithSession(r.Context(), sess))
	require.True(t, ok)
	assert.Equal(t, models.ID("u1"), got.UserID())
}
