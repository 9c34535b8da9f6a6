package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/output"
	"questctl/internal/poll"
	"questctl/internal/service"
	"questctl/internal/session"
	"questctl/internal/store"
)

const sessionExpiredMsg = "error: session expired (run: questctl login)"

// now is replaced in tests.
var now = time.Now

// newExpirer returns the session-expired flow for cfg's token file.
func newExpirer(cfg *config.Config, onExpire func()) *session.Expirer {
	return session.NewExpirer(store.NewFileTokenStore(cfg.TokenPath()), cfg.Log(), onExpire)
}

// fail reports err and maps it to an exit code. An unauthorized error
// clears the stored token.
func fail(cfg *config.Config, errOut io.Writer, err error) int {
	return failWith(cfg, errOut, err, newExpirer(cfg, nil))
}

// failWith is fail for callers that already hold the session's expirer,
// so the expired flow runs once per command.
func failWith(cfg *config.Config, errOut io.Writer, err error, expirer *session.Expirer) int {
	code := exitcode.For(err)
	switch {
	case code == exitcode.AuthError:
		expirer.Expire()
		fmt.Fprintln(errOut, sessionExpiredMsg)
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: not found")
	case code == exitcode.UserError:
		fmt.Fprintf(errOut, "error: %v\n", err)
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	}
	return code
}

// usageError prints a user error.
func usageError(errOut io.Writer, format string, a ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", a...)
	return exitcode.UserError
}

// emit writes v in the structured format selected by --output. It reports
// false for table output, leaving the rendering to the caller.
func emit(cfg *config.Config, out, errOut io.Writer, v any) (int, bool) {
	if !output.Structured(cfg.Output) {
		return 0, false
	}
	if err := output.Encode(out, cfg.Output, v); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError, true
	}
	return exitcode.Success, true
}

// ok prints the confirmation line unless --quiet.
func ok(cfg *config.Config, out io.Writer, format string, a ...any) {
	if cfg.Quiet {
		return
	}
	fmt.Fprintf(out, format+"\n", a...)
}

// watch runs refresh immediately and then every interval until ctx ends or
// the session expires.
func watch(ctx context.Context, cfg *config.Config, interval time.Duration, refresh func(ctx context.Context) error, errOut io.Writer) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	expirer := newExpirer(cfg, cancel)

	p := &poll.Poller{
		Interval:  interval,
		Immediate: true,
		Logger:    cfg.Log(),
		Refresh: func(ctx context.Context) error {
			err := refresh(ctx)
			expirer.Check(err)
			return err
		},
	}
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()

	if expirer.Expired() {
		fmt.Fprintln(errOut, sessionExpiredMsg)
		return exitcode.AuthError
	}
	return exitcode.Success
}
