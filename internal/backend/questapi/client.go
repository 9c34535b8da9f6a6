// Package questapi implements the service.Service interface over the quest REST API.
package questapi

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

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"questctl/internal/config"
	"questctl/internal/service"
	"questctl/internal/store"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = 10 * time.Second

	// RequestIDHeader carries a per-call ID the backend can log.
	RequestIDHeader = "X-Request-ID"
)

// Client implements service.Service against the quest API.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	log     *zap.Logger
}

type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client authenticated with the stored access token.
// Requires token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	tok, err := store.NewFileTokenStore(cfg.TokenPath()).Load()
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return nil, fmt.Errorf("not logged in (run: questctl login)")
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	// The backend issues no refresh tokens; expiry is reported by a 401.
	tok.Expiry = time.Time{}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))

	return NewWithHTTPClient(cfg.Settings.APIBase(), httpClient,
		WithTimeout(cfg.Settings.Timeout),
		WithLogger(cfg.Log()),
	), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Authentication, if any, is the HTTP client's job.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: APITimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one API call.
type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	out     any
	timeout time.Duration
}

func (c *Client) do(ctx context.Context, r request) error {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var payload io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, payload)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return wrapError(err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", reqID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if r.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps a non-2xx response to a service error.
func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return service.ErrUnauthorized
	case http.StatusNotFound:
		return service.ErrNotFound
	}
	return &service.APIError{Status: resp.StatusCode, Detail: errorDetail(resp)}
}

// errorDetail prefers the JSON detail field, then message, then the status line.
func errorDetail(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &body) == nil {
		switch d := body.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case nil:
		default:
			if enc, err := json.Marshal(d); err == nil {
				return string(enc)
			}
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("request failed: %w", err)
}
