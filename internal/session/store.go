package session

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/s/learnhub/internal/models"
)

const cookieName = "session"

// Manager persists sessions in a signed cookie.
type Manager struct {
	store  *sessions.CookieStore
	maxAge int
	secure bool
	now    func() time.Time
}

func NewManager(key []byte, maxAge int, secure bool) *Manager {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, maxAge: maxAge, secure: secure, now: time.Now}
}

// Load restores the session of r. It returns ErrNoSession when the browser
// has none and ErrExpired when the stored token has run out.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cs, err := m.store.Get(r, cookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	token, _ := cs.Values["token"].(string)
	if token == "" {
		return nil, ErrNoSession
	}

	sess := &Session{
		Token: token,
		User: models.User{
			ID:     models.ID(toString(cs.Values["user_id"])),
			Name:   toString(cs.Values["name"]),
			Email:  toString(cs.Values["email"]),
			Role:   models.Role(toString(cs.Values["role"])),
			Status: models.UserStatus(toString(cs.Values["status"])),
		},
	}
	if exp, ok := cs.Values["expires_at"].(int64); ok && exp > 0 {
		sess.ExpiresAt = time.Unix(exp, 0)
	}
	if sess.User.ID.IsZero() {
		return nil, ErrNoSession
	}
	if sess.Expired(m.now()) {
		return nil, ErrExpired
	}
	return sess, nil
}

func (m *Manager) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	cs, _ := m.store.Get(r, cookieName)
	cs.Values["token"] = sess.Token
	cs.Values["user_id"] = sess.User.ID.String()
	cs.Values["name"] = sess.User.Name
	cs.Values["email"] = sess.User.Email
	cs.Values["role"] = string(sess.User.Role)
	cs.Values["status"] = string(sess.User.Status)
	if !sess.ExpiresAt.IsZero() {
		cs.Values["expires_at"] = sess.ExpiresAt.Unix()
	} else {
		delete(cs.Values, "expires_at")
	}
	return cs.Save(r, w)
}

// Destroy clears the session cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	cs, _ := m.store.Get(r, cookieName)
	cs.Values = map[interface{}]interface{}{}
	cs.Options.MaxAge = -1
	return cs.Save(r, w)
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}
