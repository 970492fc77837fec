// Package api provides a typed client for the project-management REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the fallback API host when none is configured.
	DefaultBaseURL = "https://project-management-system-backend-v.vercel.app"

	requestTimeout = 30 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

// TokenFunc returns the current bearer token, or "" when logged out.
type TokenFunc func() string

// Client issues authenticated requests against the remote API.
// All resource operations hang off its service fields.
type Client struct {
	baseURL    string
	http       *http.Client
	token      TokenFunc
	onAuthFail func()
	log        zerolog.Logger

	Auth     *AuthService
	Clients  *ClientsService
	Projects *ProjectsService
	Payments *PaymentsService
	Expenses *ExpensesService
	Stats    *StatisticsService
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token source.
func WithToken(fn TokenFunc) Option {
	return func(c *Client) { c.token = fn }
}

// WithUnauthorizedHook registers fn to run when the server answers 401.
// The session layer uses this to drop the stored credential.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onAuthFail = fn }
}

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the given base URL. An empty baseURL falls
// back to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Clients = &ClientsService{c: c}
	c.Projects = &ProjectsService{c: c}
	c.Payments = &PaymentsService{c: c}
	c.Expenses = &ExpensesService{c: c}
	c.Stats = &StatisticsService{c: c}
	return c
}

// BaseURL returns the configured API host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues one request and decodes a 2xx JSON response into out (when
// out is non-nil). Query params, body, and auth are optional.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("api: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("api: reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onAuthFail != nil {
			c.onAuthFail()
		}
		return ErrUnauthorized
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: serverMessage(data),
		}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: parsing %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// listParams builds the shared page/limit query parameters.
func listParams(page, limit int) url.Values {
	params := url.Values{}
	if page > 0 {
		params.Set("page", fmt.Sprintf("%d", page))
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	return params
}

// serverMessage extracts the error text from a structured error payload.
// The backend answers either {"error": "..."} or {"message": "..."}.
func serverMessage(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return ""
}
