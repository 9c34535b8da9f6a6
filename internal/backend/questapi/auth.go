package questapi

import (
	"context"
	"errors"
	"net/http"

	"questctl/internal/config"
	"questctl/internal/service"
)

// Authenticator performs the unauthenticated login call.
type Authenticator struct {
	c *Client
}

// NewAuthenticator creates an Authenticator using the configured API base
// and login timeout.
func NewAuthenticator(cfg *config.Config) *Authenticator {
	return NewAuthenticatorWithHTTPClient(cfg.Settings.APIBase(), http.DefaultClient,
		WithTimeout(cfg.Settings.LoginTimeout),
		WithLogger(cfg.Log()),
	)
}

// NewAuthenticatorWithHTTPClient creates an Authenticator with a custom HTTP client (for testing).
func NewAuthenticatorWithHTTPClient(baseURL string, httpClient *http.Client, opts ...Option) *Authenticator {
	return &Authenticator{c: NewWithHTTPClient(baseURL, httpClient, opts...)}
}

// Login exchanges credentials for an access token. Rejected credentials
// are an APIError, not a session expiry.
func (a *Authenticator) Login(ctx context.Context, creds service.Credentials) (service.AccessToken, error) {
	var tok service.AccessToken
	err := a.c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: creds, out: &tok})
	if errors.Is(err, service.ErrUnauthorized) {
		return tok, &service.APIError{Status: http.StatusUnauthorized, Detail: "Incorrect username or password"}
	}
	if err != nil {
		return tok, err
	}
	if tok.AccessToken == "" {
		return tok, errors.New("login response has no access_token")
	}
	return tok, nil
}

var _ service.Authenticator = (*Authenticator)(nil)
