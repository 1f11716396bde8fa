package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const maxBodySize = 10 << 20

// Client talks to the marketplace REST API. The zero token client only
// reaches public endpoints; WithToken returns a copy that authenticates.
type Client struct {
	baseURL string
	base    *http.Client
	http    *http.Client
	token   string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.base = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.base.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = c.base
	return c
}

// WithToken returns a client that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	if token == "" {
		cp.http = c.base
		return &cp
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	cp.http = &http.Client{
		Timeout:   c.base.Timeout,
		Transport: &oauth2.Transport{Source: src, Base: c.base.Transport},
	}
	return &cp
}

func (c *Client) Authenticated() bool { return c.token != "" }

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends the request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, errors.Wrapf(ErrTransport, "build %s %s: %v", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrTransport, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrapf(ErrTransport, "read %s %s: %v", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, data)
	}
	if failureEnvelope(data) {
		return nil, &Error{Status: http.StatusUnprocessableEntity, Message: messageOf(data, resp.StatusCode), Kind: ErrValidation}
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

func (c *Client) send(ctx context.Context, method, path string, in interface{}) ([]byte, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrapf(ErrValidation, "encode %s %s: %v", method, path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, nil, body, contentType)
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values, keys ...string) ([]T, error) {
	data, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := DecodeList(data, &out, keys...); err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func getObject[T any](ctx context.Context, c *Client, path string, keys ...string) (*T, error) {
	data, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := DecodeObject(data, out, keys...); err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	return out, nil
}

// sendObject writes in and decodes the returned object. Endpoints that answer
// with an empty body yield a zero T.
func sendObject[T any](ctx context.Context, c *Client, method, path string, in interface{}, keys ...string) (*T, error) {
	data, err := c.send(ctx, method, path, in)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := DecodeObject(data, out, keys...); err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	return out, nil
}

func (c *Client) remove(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, "")
	return err
}

func idPath(prefix string, id interface{ String() string }, rest ...string) string {
	parts := append([]string{prefix, url.PathEscape(id.String())}, rest...)
	return strings.Join(parts, "/")
}
