package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"questctl/internal/config"
	"questctl/internal/dashboard"
	"questctl/internal/exitcode"
	"questctl/internal/output"
	"questctl/internal/service"
)

func init() {
	Register(&QueueCmd{})
	Register(&VerifyCmd{name: "approve", approved: true})
	Register(&VerifyCmd{name: "reject"})
}

// QueueCmd implements the queue command: submissions waiting for review.
type QueueCmd struct {
	watch  bool
	filter string
}

func (c *QueueCmd) Name() string      { return "queue" }
func (c *QueueCmd) Aliases() []string { return []string{"pending"} }
func (c *QueueCmd) Synopsis() string  { return "List submissions awaiting verification" }
func (c *QueueCmd) Usage() string {
	return "questctl queue [--watch] [--filter all|telegram|twitter|youtube|social|high-xp]"
}
func (c *QueueCmd) NeedsAuth() bool { return true }

func (c *QueueCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.watch, "watch", false, "")
	fs.BoolVar(&c.watch, "w", false, "")
	fs.StringVar(&c.filter, "filter", dashboard.FilterAll, "")
}

func (c *QueueCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !dashboard.ValidFilter(c.filter) {
		return usageError(errOut, "invalid filter: %s", c.filter)
	}
	if !c.watch {
		uts, err := c.load(ctx, svc)
		if err != nil {
			return fail(cfg, errOut, err)
		}
		if code, done := emit(cfg, out, errOut, uts); done {
			return code
		}
		c.print(cfg, out, uts)
		return exitcode.Success
	}

	return watch(ctx, cfg, cfg.Settings.QueueInterval, func(ctx context.Context) error {
		uts, err := c.load(ctx, svc)
		if err != nil {
			return err
		}
		if _, done := emit(cfg, out, errOut, uts); done {
			return nil
		}
		fmt.Fprintf(out, "── %s ──\n", now().Format("15:04:05"))
		c.print(cfg, out, uts)
		return nil
	}, errOut)
}

func (c *QueueCmd) load(ctx context.Context, svc service.Service) ([]service.UserTask, error) {
	uts, err := svc.ListUserTasks(ctx, service.StatusSubmitted)
	if err != nil {
		return nil, err
	}
	return dashboard.FilterQueue(uts, c.filter), nil
}

func (c *QueueCmd) print(cfg *config.Config, out io.Writer, uts []service.UserTask) {
	if len(uts) == 0 {
		ok(cfg, out, "queue is empty")
		return
	}
	t := now()
	for _, ut := range uts {
		output.FormatSubmission(out, ut, t)
	}
}

// VerifyCmd implements approve and reject. Each ID is verified in turn;
// one failure does not stop the rest.
type VerifyCmd struct {
	name     string
	approved bool
	reason   string
}

func (c *VerifyCmd) Name() string      { return c.name }
func (c *VerifyCmd) Aliases() []string { return nil }
func (c *VerifyCmd) Synopsis() string {
	if c.approved {
		return "Approve submissions"
	}
	return "Reject submissions"
}
func (c *VerifyCmd) Usage() string {
	return fmt.Sprintf("questctl %s <id...> [--reason <text>]", c.name)
}
func (c *VerifyCmd) NeedsAuth() bool { return true }

func (c *VerifyCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.reason, "reason", "", "")
}

func (c *VerifyCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return usageError(errOut, "submission id required")
	}
	res, err := dashboard.BulkVerify(ctx, svc, cfg.Log(), args, c.approved, c.reason)
	if err != nil {
		if service.IsUnauthorized(err) {
			return fail(cfg, errOut, err)
		}
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.UserError
	}
	for _, id := range args {
		if e, failed := res.Errors[id]; failed {
			fmt.Fprintf(errOut, "error: %s: %v\n", id, e)
		}
	}
	if !cfg.Quiet || res.Failed > 0 {
		fmt.Fprintln(out, res.Summary())
	}
	if res.Failed > 0 {
		return exitcode.BackendError
	}
	return exitcode.Success
}
