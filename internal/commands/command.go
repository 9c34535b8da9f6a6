// Package commands implements the questctl subcommands. Each file registers
// its commands with DefaultRegistry from init.
package commands

import (
	"context"
	"flag"
	"io"

	"questctl/internal/config"
	"questctl/internal/service"
)

// Command is one questctl subcommand.
type Command interface {
	Name() string
	Aliases() []string

	// Synopsis is the one-line summary shown by help.
	Synopsis() string
	Usage() string

	// NeedsAuth reports whether the command talks to the admin API. The
	// dispatcher refuses to run it without a stored token and builds svc
	// only for these commands.
	NeedsAuth() bool

	RegisterFlags(fs *flag.FlagSet)

	// Run receives the positional arguments left after flag parsing and
	// returns the process exit code. svc is nil when NeedsAuth is false.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}
