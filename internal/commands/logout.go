package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/service"
	"questctl/internal/session"
	"questctl/internal/store"
)

func init() {
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the stored session" }
func (c *LogoutCmd) Usage() string     { return "questctl logout" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasToken() {
		ok(cfg, out, "not logged in")
		return exitcode.Success
	}
	if err := store.NewFileTokenStore(cfg.TokenPath()).Clear(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	ok(cfg, out, "ok")
	return exitcode.Success
}

// WhoamiCmd implements the whoami command. It reads the stored token only.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in admin" }
func (c *WhoamiCmd) Usage() string     { return "questctl whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return false }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	tok, err := store.NewFileTokenStore(cfg.TokenPath()).Load()
	if err != nil {
		fmt.Fprintln(errOut, "error: not logged in (run: questctl login)")
		return exitcode.AuthError
	}
	info, err := session.Inspect(tok.AccessToken)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	t := now()
	if info.Expired(t) {
		fmt.Fprintln(errOut, sessionExpiredMsg)
		return exitcode.AuthError
	}
	fmt.Fprintf(out, "%s (%s)\n", orDefault(info.Subject, "admin"), session.FormatExpiry(info, t))
	return exitcode.Success
}
