package commands

import (
	"context"
	"flag"
	"io"

	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/output"
	"questctl/internal/service"
)

func init() {
	Register(&TasksCmd{})
	Register(&AddTaskCmd{})
	Register(&EditTaskCmd{})
	Register(&RmTaskCmd{})
	Register(&ToggleTaskCmd{})
}

// TasksCmd implements the tasks command.
// Numbers count every quest so that a number names the same quest with or
// without --all.
type TasksCmd struct {
	all bool
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return nil }
func (c *TasksCmd) Synopsis() string  { return "List quests" }
func (c *TasksCmd) Usage() string     { return "questctl tasks [--all]" }
func (c *TasksCmd) NeedsAuth() bool   { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.all, "a", false, "")
}

func (c *TasksCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	tasks, err := svc.ListTasks(ctx, false)
	if err != nil {
		return fail(cfg, errOut, err)
	}

	shown := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.all || t.IsActive {
			shown = append(shown, t)
		}
	}
	if code, done := emit(cfg, out, errOut, shown); done {
		return code
	}
	if len(shown) == 0 {
		ok(cfg, out, "no quests found")
		return exitcode.Success
	}
	for i, t := range tasks {
		if c.all || t.IsActive {
			output.FormatTask(out, i+1, t)
		}
	}
	return exitcode.Success
}

// AddTaskCmd implements the addtask command.
type AddTaskCmd struct {
	form questForm
}

func (c *AddTaskCmd) Name() string      { return "addtask" }
func (c *AddTaskCmd) Aliases() []string { return []string{"createtask"} }
func (c *AddTaskCmd) Synopsis() string  { return "Create a quest" }
func (c *AddTaskCmd) Usage() string {
	return "questctl addtask --type <type> --title <title> [quest flags]"
}
func (c *AddTaskCmd) NeedsAuth() bool { return true }

func (c *AddTaskCmd) RegisterFlags(fs *flag.FlagSet) {
	c.form.register(fs)
}

func (c *AddTaskCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	in, err := c.form.build()
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	lookupVideo(ctx, cfg, &in)

	t, err := svc.CreateTask(ctx, in)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	if code, done := emit(cfg, out, errOut, t); done {
		return code
	}
	ok(cfg, out, "✓ The %s quest %q has been created and is now available for players. (%s)", c.form.kind, t.Title, t.ID)
	return exitcode.Success
}

// EditTaskCmd implements the edittask command. Only the flags given are
// changed; --type rebuilds the quest's verification settings.
type EditTaskCmd struct {
	form questForm
}

func (c *EditTaskCmd) Name() string      { return "edittask" }
func (c *EditTaskCmd) Aliases() []string { return nil }
func (c *EditTaskCmd) Synopsis() string  { return "Update a quest" }
func (c *EditTaskCmd) Usage() string     { return "questctl edittask <ref> [quest flags]" }
func (c *EditTaskCmd) NeedsAuth() bool   { return true }

func (c *EditTaskCmd) RegisterFlags(fs *flag.FlagSet) {
	c.form.register(fs)
}

func (c *EditTaskCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	_, t, code, found := resolveTaskArg(ctx, cfg, svc, args, true, errOut)
	if !found {
		return code
	}

	in := inputOf(t)
	if err := c.form.overlay(&in); err != nil {
		return usageError(errOut, "%v", err)
	}
	if c.form.isSet("type") {
		if err := c.form.applyType(&in); err != nil {
			return usageError(errOut, "%v", err)
		}
	}
	lookupVideo(ctx, cfg, &in)

	updated, err := svc.UpdateTask(ctx, t.ID, in)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	if code, done := emit(cfg, out, errOut, updated); done {
		return code
	}
	ok(cfg, out, "✓ Quest %q updated.", updated.Title)
	return exitcode.Success
}

// RmTaskCmd implements the rmtask command.
type RmTaskCmd struct{}

func (c *RmTaskCmd) Name() string      { return "rmtask" }
func (c *RmTaskCmd) Aliases() []string { return []string{"deltask"} }
func (c *RmTaskCmd) Synopsis() string  { return "Delete a quest" }
func (c *RmTaskCmd) Usage() string     { return "questctl rmtask <ref>" }
func (c *RmTaskCmd) NeedsAuth() bool   { return true }

func (c *RmTaskCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmTaskCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	_, t, code, found := resolveTaskArg(ctx, cfg, svc, args, true, errOut)
	if !found {
		return code
	}
	if err := svc.DeleteTask(ctx, t.ID); err != nil {
		return fail(cfg, errOut, err)
	}
	ok(cfg, out, "🗑 Quest deleted!")
	return exitcode.Success
}

// ToggleTaskCmd implements the toggletask command.
type ToggleTaskCmd struct{}

func (c *ToggleTaskCmd) Name() string      { return "toggletask" }
func (c *ToggleTaskCmd) Aliases() []string { return nil }
func (c *ToggleTaskCmd) Synopsis() string  { return "Activate or pause a quest" }
func (c *ToggleTaskCmd) Usage() string     { return "questctl toggletask <ref>" }
func (c *ToggleTaskCmd) NeedsAuth() bool   { return true }

func (c *ToggleTaskCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleTaskCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	_, t, code, found := resolveTaskArg(ctx, cfg, svc, args, true, errOut)
	if !found {
		return code
	}
	if err := svc.ToggleTask(ctx, t.ID); err != nil {
		return fail(cfg, errOut, err)
	}
	if t.IsActive {
		ok(cfg, out, "⏸ Quest deactivated!")
	} else {
		ok(cfg, out, "✅ Quest activated!")
	}
	return exitcode.Success
}
