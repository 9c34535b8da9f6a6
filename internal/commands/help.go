package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "questctl help [command]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, found := DefaultRegistry.Find(args[0])
		if !found {
			return usageError(errOut, "unknown command: %s", args[0])
		}
		fmt.Fprintf(out, "%s\n\nUsage:\n  %s\n", cmd.Synopsis(), cmd.Usage())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "\nAliases: %s\n", strings.Join(aliases, ", "))
		}
		if cmd.NeedsAuth() {
			fmt.Fprintln(out, "\nRequires a session (questctl login).")
		}
		return exitcode.Success
	}

	fmt.Fprint(out, helpHeader)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, cmd := range DefaultRegistry.All() {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Usage(), cmd.Synopsis())
	}
	tw.Flush()
	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpHeader = `Usage:
  questctl <command> [flags] [args]
  questctl            dashboard when logged in, otherwise this help

Commands:
`

const helpFooter = `
<ref> is a quest number from "questctl tasks" or a quest ID.

Quest types:
  twitter    --username <user> [--action follow|like|retweet|reply] [--tweet-url <url>]
  telegram   --url <invite> --chat-id <id> --chat-name <name> [--action join_group|join_channel]
  youtube    --url <video> --code <code> [--hint h] [--case-insensitive] [--min-watch s]
             [--code-timestamp t] [--max-attempts n]
  social     --platform <name> --url <url> [--action-description d]
  website    --url <url> [--method auto|timer|manual] [--timer s] [--action-description d]
  daily      [--streak-bonus n] [--reset-time HH:MM] [--consecutive n]
  manual     [--instructions text]
Quest flags for every type: --description, --points, --bonus, --inactive.

Reward flags:
  --title, --description, --type, --cost, --quantity (-1 for unlimited), --image-url, --inactive

Common flags:
  --config <dir>     Override config directory
  --output <format>  table, json or yaml (alias: -o)
  --quiet            Suppress informational output
  --debug            Print debug logs to stderr
`
