package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/s/learnhub/internal/models"
)

var (
	ErrNoSession    = errors.New("session: not logged in")
	ErrExpired      = errors.New("session: token expired")
	ErrInvalidToken = errors.New("session: invalid token")
)

// Session is the authenticated state of one browser: the backend bearer
// token and the user it belongs to. It is built once at login, carried in the
// request context, and dropped on logout or when the backend answers 401.
type Session struct {
	Token     string
	User      models.User
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s *Session) IsAdmin() bool { return s != nil && s.User.IsAdmin() }

func (s *Session) UserID() models.ID {
	if s == nil {
		return ""
	}
	return s.User.ID
}

// Claims are the token fields this service reads. The token is verified by
// the backend on every call, so it is parsed here without a key.
type Claims struct {
	UserID    models.ID
	Role      models.Role
	Name      string
	Email     string
	ExpiresAt time.Time
}

func ParseClaims(token string) (Claims, error) {
	tok, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		Role:  models.Role(strings.ToLower(stringClaim(claims, "role"))),
		Name:  stringClaim(claims, "name"),
		Email: stringClaim(claims, "email"),
	}
	for _, key := range []string{"sub", "id", "user_id", "userId", "_id"} {
		if id := stringClaim(claims, key); id != "" {
			out.UserID = models.ID(id)
			break
		}
	}
	if out.UserID.IsZero() {
		return Claims{}, fmt.Errorf("%w: no user id claim", ErrInvalidToken)
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}

// New builds a session from a token, using the claims for a first view of
// the user. Callers normally replace User with the backend's record.
func New(token string, now time.Time) (*Session, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		Token: token,
		User: models.User{
			ID:     claims.UserID,
			Name:   claims.Name,
			Email:  claims.Email,
			Role:   claims.Role,
			Status: models.UserActive,
		},
		ExpiresAt: claims.ExpiresAt,
	}
	if sess.User.Role == "" {
		sess.User.Role = models.RoleUser
	}
	if sess.Expired(now) {
		return nil, ErrExpired
	}
	return sess, nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
