package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Every error returned by Client matches exactly one of them
// with errors.Is.
var (
	ErrTransport    = errors.New("api: transport failure")
	ErrValidation   = errors.New("api: request rejected")
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrForbidden    = errors.New("api: forbidden")
	ErrNotFound     = errors.New("api: not found")
	ErrMalformed    = errors.New("api: unexpected response shape")
	ErrServer       = errors.New("api: backend failure")
)

// Error is a failure reported by the backend.
type Error struct {
	Status  int
	Message string
	Kind    error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%v: %s (status %d)", e.Kind, e.Message, e.Status)
}

func (e *Error) Unwrap() error { return e.Kind }

func kindOf(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	default:
		return ErrValidation
	}
}

func newStatusError(status int, body []byte) *Error {
	return &Error{Status: status, Message: messageOf(body, status), Kind: kindOf(status)}
}

// messageOf digs a human readable message out of an error payload.
func messageOf(body []byte, status int) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "error", "msg", "detail"} {
			raw, ok := payload[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(raw, &nested); err == nil {
				if m := messageOf(raw, status); m != "" {
					return m
				}
			}
		}
		if raw, ok := payload["errors"]; ok {
			var list []string
			if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
				return strings.Join(list, "; ")
			}
			var fields map[string]string
			if err := json.Unmarshal(raw, &fields); err == nil && len(fields) > 0 {
				parts := make([]string, 0, len(fields))
				for k, v := range fields {
					parts = append(parts, k+": "+v)
				}
				return strings.Join(parts, "; ")
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(status)
}

// StatusCode maps err to the HTTP status a handler should answer with.
func StatusCode(err error) int {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// Message returns the user-facing text of err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, ErrTransport):
		return "The service is unreachable, please try again"
	case errors.Is(err, ErrMalformed):
		return "Unexpected response from the service"
	case errors.Is(err, ErrUnauthorized):
		return "Please log in again"
	}
	return "Something went wrong"
}
