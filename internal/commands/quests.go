package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/output"
	"questctl/internal/quest"
	"questctl/internal/service"
)

func init() {
	Register(&QuestsCmd{})
	Register(&QuestCmd{})
	Register(&CompleteCmd{})
}

// QuestsCmd implements the quests command: the player's view of active quests.
type QuestsCmd struct{}

func (c *QuestsCmd) Name() string      { return "quests" }
func (c *QuestsCmd) Aliases() []string { return nil }
func (c *QuestsCmd) Synopsis() string  { return "Show active quests as players see them" }
func (c *QuestsCmd) Usage() string     { return "questctl quests" }
func (c *QuestsCmd) NeedsAuth() bool   { return true }

func (c *QuestsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *QuestsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	tasks, err := svc.ListTasks(ctx, true)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	cards := make([]quest.Card, 0, len(tasks))
	for i, t := range tasks {
		cards = append(cards, quest.NewCard(i+1, t))
	}
	if code, done := emit(cfg, out, errOut, cards); done {
		return code
	}
	if len(cards) == 0 {
		ok(cfg, out, "no quests available")
		return exitcode.Success
	}
	for _, card := range cards {
		fmt.Fprintln(out, output.RenderCard(card))
	}
	return exitcode.Success
}

// QuestCmd implements the quest command.
type QuestCmd struct{}

func (c *QuestCmd) Name() string      { return "quest" }
func (c *QuestCmd) Aliases() []string { return []string{"show"} }
func (c *QuestCmd) Synopsis() string  { return "Show one quest's details" }
func (c *QuestCmd) Usage() string     { return "questctl quest <ref>" }
func (c *QuestCmd) NeedsAuth() bool   { return true }

func (c *QuestCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *QuestCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	pos, t, code, found := resolveTaskArg(ctx, cfg, svc, args, false, errOut)
	if !found {
		return code
	}
	d := quest.NewDetail(pos, t)
	if code, done := emit(cfg, out, errOut, d); done {
		return code
	}
	fmt.Fprintln(out, output.RenderDetail(d))
	return exitcode.Success
}

// CompleteCmd implements the complete command: it opens the quest's link
// and tells the operator how the bot verifies it. Nothing is sent to the
// backend.
type CompleteCmd struct {
	code   string
	noOpen bool
}

func (c *CompleteCmd) Name() string      { return "complete" }
func (c *CompleteCmd) Aliases() []string { return []string{"start"} }
func (c *CompleteCmd) Synopsis() string  { return "Open a quest and follow its completion flow" }
func (c *CompleteCmd) Usage() string     { return "questctl complete <ref> [--code <code>] [--no-open]" }
func (c *CompleteCmd) NeedsAuth() bool   { return true }

func (c *CompleteCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.code, "code", "", "")
	fs.BoolVar(&c.noOpen, "no-open", false, "")
}

func (c *CompleteCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	pos, t, code, found := resolveTaskArg(ctx, cfg, svc, args, false, errOut)
	if !found {
		return code
	}

	var opener quest.Opener = quest.BrowserOpener{}
	if c.noOpen {
		opener = quest.OpenerFunc(func(ctx context.Context, url string) error {
			fmt.Fprintf(out, "🔗 %s\n", url)
			return nil
		})
	}
	console := quest.NewConsole(opener, output.Notifier{Out: out, Quiet: cfg.Quiet},
		quest.WithJoinDelay(cfg.Settings.JoinDelay),
		quest.WithLogger(cfg.Log()),
	)
	console.Select(pos, t)

	err := console.Complete(ctx, c.code)
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, quest.ErrCodeRequired):
		return exitcode.UserError
	case ctx.Err() != nil:
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
}
