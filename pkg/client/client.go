// Package client talks to the complaint API from Go: the public form
// operations on Client and the dashboard workflow on AdminSession.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mantavyam/jacob-web/pkg/api"
	"github.com/mantavyam/jacob-web/pkg/validation"
)

var (
	// ErrUnavailable wraps transport failures; the server was never reached.
	ErrUnavailable = errors.New("unable to connect to the server")
	// ErrUnauthorized is returned when the admin secret was rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned for unknown complaints and empty lookups.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers use errors.Is with ErrUnauthorized and ErrNotFound.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	adminSecret string
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 30s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAdminSecret sets the secret sent on admin requests.
func WithAdminSecret(secret string) Option {
	return func(c *Client) { c.adminSecret = secret }
}

// New returns a client for the server at baseURL, e.g. "http://localhost:3000".
// The /api prefix is added by the client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// withSecret returns a copy of c that sends secret on admin requests.
func (c *Client) withSecret(secret string) *Client {
	cp := *c
	cp.adminSecret = secret
	return &cp
}

// Health fetches GET /api/health. A degraded server answers 503 with a body,
// which is returned together with the error.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &resp, false)
	var apiErr *APIError
	if err != nil && !(errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable) {
		return nil, err
	}
	return &resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, admin bool) error {
	endpoint := c.baseURL + "/api" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set(api.AdminSecretHeader, c.adminSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw, out)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError turns an error body into *validation.Errors for rejected forms
// and *APIError for everything else. out still receives the body when it
// decodes, which health checks rely on.
func decodeError(status int, raw []byte, out interface{}) error {
	var body api.ErrorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return &APIError{StatusCode: status, Message: http.StatusText(status)}
	}
	if status == http.StatusBadRequest && len(body.Errors) > 0 {
		return &validation.Errors{Fields: body.Errors}
	}
	if out != nil {
		_ = json.Unmarshal(raw, out)
	}
	return &APIError{StatusCode: status, Code: body.Error, Message: body.Message}
}
