package commands

import (
	"context"
	"errors"
	"flag"
	"io"

	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/output"
	"questctl/internal/service"
)

func init() {
	Register(&UsersCmd{})
	Register(&BanCmd{})
	Register(&LeaderboardCmd{})
}

// UsersCmd implements the users command.
type UsersCmd struct{}

func (c *UsersCmd) Name() string      { return "users" }
func (c *UsersCmd) Aliases() []string { return []string{"players"} }
func (c *UsersCmd) Synopsis() string  { return "List players" }
func (c *UsersCmd) Usage() string     { return "questctl users" }
func (c *UsersCmd) NeedsAuth() bool   { return true }

func (c *UsersCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UsersCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	users, err := svc.ListUsers(ctx)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	if code, done := emit(cfg, out, errOut, users); done {
		return code
	}
	if len(users) == 0 {
		ok(cfg, out, "no users found")
		return exitcode.Success
	}
	for _, u := range users {
		output.FormatUser(out, u)
	}
	return exitcode.Success
}

// BanCmd implements the ban command. Banning a banned player unbans them.
type BanCmd struct{}

func (c *BanCmd) Name() string      { return "ban" }
func (c *BanCmd) Aliases() []string { return []string{"unban"} }
func (c *BanCmd) Synopsis() string  { return "Toggle a player's ban" }
func (c *BanCmd) Usage() string     { return "questctl ban <user-id>" }
func (c *BanCmd) NeedsAuth() bool   { return true }

func (c *BanCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BanCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return usageError(errOut, "user id required")
	}
	id := args[0]
	if err := svc.ToggleBan(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return usageError(errOut, "user not found: %s", id)
		}
		return fail(cfg, errOut, err)
	}
	ok(cfg, out, "✓ Player status updated!")
	return exitcode.Success
}

// LeaderboardCmd implements the leaderboard command.
type LeaderboardCmd struct {
	limit int
}

func (c *LeaderboardCmd) Name() string      { return "leaderboard" }
func (c *LeaderboardCmd) Aliases() []string { return []string{"top"} }
func (c *LeaderboardCmd) Synopsis() string  { return "Show the top players" }
func (c *LeaderboardCmd) Usage() string     { return "questctl leaderboard [--limit <n>]" }
func (c *LeaderboardCmd) NeedsAuth() bool   { return true }

func (c *LeaderboardCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.limit, "limit", 10, "")
	fs.IntVar(&c.limit, "n", 10, "")
}

func (c *LeaderboardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.limit < 1 {
		return usageError(errOut, "invalid limit: %d", c.limit)
	}
	users, err := svc.Leaderboard(ctx, c.limit)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	if code, done := emit(cfg, out, errOut, users); done {
		return code
	}
	if len(users) == 0 {
		ok(cfg, out, "no players yet")
		return exitcode.Success
	}
	for i, u := range users {
		output.FormatLeader(out, i+1, u)
	}
	return exitcode.Success
}
