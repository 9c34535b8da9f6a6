// Package session inspects admin access tokens and runs the session-expired flow.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"questctl/internal/service"
	"questctl/internal/store"
)

// Info is what the console can read from an access token without the signing key.
type Info struct {
	Subject string
	Expiry  time.Time
}

// Expired reports whether the token's exp claim is in the past.
func (i Info) Expired(now time.Time) bool {
	return !i.Expiry.IsZero() && !now.Before(i.Expiry)
}

// Inspect reads the sub and exp claims of a JWT. The signature is not
// checked; the backend does that on every request.
func Inspect(raw string) (Info, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Info{}, fmt.Errorf("parse access token: %w", err)
	}
	var info Info
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.Expiry = exp.Time
	}
	return info, nil
}

// NewToken converts a login response into a storable token.
// The expiry comes from the JWT exp claim when readable.
func NewToken(at service.AccessToken) *oauth2.Token {
	tokenType := at.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	tok := &oauth2.Token{AccessToken: at.AccessToken, TokenType: tokenType}
	if info, err := Inspect(at.AccessToken); err == nil {
		tok.Expiry = info.Expiry
	}
	return tok
}

// Expirer clears the stored token the first time a request is rejected.
// Concurrent fetches that all see 401 trigger one clear and one callback.
type Expirer struct {
	tokens   store.TokenStore
	log      *zap.Logger
	onExpire func()

	once    sync.Once
	expired bool
	mu      sync.Mutex
}

func NewExpirer(tokens store.TokenStore, log *zap.Logger, onExpire func()) *Expirer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Expirer{tokens: tokens, log: log, onExpire: onExpire}
}

// Expire runs the session-expired flow once.
func (e *Expirer) Expire() {
	e.once.Do(func() {
		e.mu.Lock()
		e.expired = true
		e.mu.Unlock()

		if e.tokens != nil {
			if err := e.tokens.Clear(); err != nil {
				e.log.Warn("failed to clear token", zap.Error(err))
			}
		}
		e.log.Info("session expired, token cleared")
		if e.onExpire != nil {
			e.onExpire()
		}
	})
}

// Check runs Expire when err is an unauthorized error and reports whether it was.
func (e *Expirer) Check(err error) bool {
	if errors.Is(err, service.ErrUnauthorized) {
		e.Expire()
		return true
	}
	return false
}

func (e *Expirer) Expired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expired
}

// FormatExpiry renders the time left on a token.
func FormatExpiry(info Info, now time.Time) string {
	if info.Expiry.IsZero() {
		return "no expiry"
	}
	if info.Expired(now) {
		return "expired " + info.Expiry.Local().Format(time.RFC1123)
	}
	left := info.Expiry.Sub(now).Round(time.Minute)
	return fmt.Sprintf("expires %s (in %s)", info.Expiry.Local().Format(time.RFC1123), strings.TrimSuffix(left.String(), "0s"))
}
