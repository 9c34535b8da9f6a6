package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"questctl/internal/backend/questapi"
	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/service"
	"questctl/internal/session"
	"questctl/internal/store"
)

// NewAuthenticator builds the login client. Tests replace it.
var NewAuthenticator = func(cfg *config.Config) service.Authenticator {
	return questapi.NewAuthenticator(cfg)
}

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username      string
	password      string
	passwordStdin bool
	force         bool
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in as an admin" }
func (c *LoginCmd) Usage() string {
	return "questctl login --username <name> --password-stdin [--force]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	tokens := store.NewFileTokenStore(cfg.TokenPath())

	if !c.force {
		if info, valid := storedSession(tokens); valid {
			ok(cfg, out, "already logged in as %s", orDefault(info.Subject, "admin"))
			return exitcode.Success
		}
	}

	username := strings.TrimSpace(c.username)
	if username == "" {
		return usageError(errOut, "username required (--username)")
	}
	password, err := readPassword(c.password, c.passwordStdin)
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	at, err := NewAuthenticator(cfg).Login(ctx, service.Credentials{Username: username, Password: password})
	if err != nil {
		var apiErr *service.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(errOut, "error: login failed: %v\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	tok := session.NewToken(at)
	if err := tokens.Save(tok); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	cfg.Log().Debug("logged in", zap.String("username", username), zap.Time("expiry", tok.Expiry))

	ok(cfg, out, "ok")
	return exitcode.Success
}

// storedSession reports the stored token's claims and whether it is still
// usable. Tokens without a readable exp claim count as usable.
func storedSession(tokens store.TokenStore) (session.Info, bool) {
	tok, err := tokens.Load()
	if err != nil {
		return session.Info{}, false
	}
	info, err := session.Inspect(tok.AccessToken)
	if err != nil {
		return session.Info{}, true
	}
	return info, !info.Expired(now())
}
