package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/output"
	"questctl/internal/service"
)

func init() {
	Register(&RewardsCmd{})
	Register(&AddRewardCmd{})
	Register(&EditRewardCmd{})
	Register(&RmRewardCmd{})
}

// RewardsCmd implements the rewards command.
type RewardsCmd struct{}

func (c *RewardsCmd) Name() string      { return "rewards" }
func (c *RewardsCmd) Aliases() []string { return []string{"loot"} }
func (c *RewardsCmd) Synopsis() string  { return "List rewards" }
func (c *RewardsCmd) Usage() string     { return "questctl rewards" }
func (c *RewardsCmd) NeedsAuth() bool   { return true }

func (c *RewardsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RewardsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	rewards, err := svc.ListRewards(ctx)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	if code, done := emit(cfg, out, errOut, rewards); done {
		return code
	}
	if len(rewards) == 0 {
		ok(cfg, out, "no rewards found")
		return exitcode.Success
	}
	for _, r := range rewards {
		output.FormatReward(out, r)
	}
	return exitcode.Success
}

// rewardForm holds the flags shared by addreward and editreward.
type rewardForm struct {
	fs *flag.FlagSet

	title       string
	description string
	rewardType  string
	cost        int
	quantity    int
	imageURL    string
	inactive    bool
}

func (f *rewardForm) register(fs *flag.FlagSet) {
	f.fs = fs
	fs.StringVar(&f.title, "title", "", "")
	fs.StringVar(&f.description, "description", "", "")
	fs.StringVar(&f.rewardType, "type", "digital", "")
	fs.IntVar(&f.cost, "cost", 0, "")
	fs.IntVar(&f.quantity, "quantity", -1, "")
	fs.StringVar(&f.imageURL, "image-url", "", "")
	fs.BoolVar(&f.inactive, "inactive", false, "")
}

func (f *rewardForm) isSet(name string) bool {
	set := false
	if f.fs != nil {
		f.fs.Visit(func(fl *flag.Flag) {
			if fl.Name == name {
				set = true
			}
		})
	}
	return set
}

// quantityPtr maps a negative --quantity to unlimited.
func (f *rewardForm) quantityPtr() *int {
	if f.quantity < 0 {
		return nil
	}
	q := f.quantity
	return &q
}

// apply copies the given flags onto in. With all set every field is
// taken from the form.
func (f *rewardForm) apply(in *service.RewardInput, all bool) error {
	if all || f.isSet("title") {
		if strings.TrimSpace(f.title) == "" {
			return errors.New("reward title required")
		}
		in.Title = strings.TrimSpace(f.title)
	}
	if all || f.isSet("description") {
		in.Description = f.description
	}
	if all || f.isSet("type") {
		in.RewardType = f.rewardType
	}
	if all || f.isSet("cost") {
		if f.cost < 0 {
			return fmt.Errorf("invalid cost: %d", f.cost)
		}
		in.PointsCost = f.cost
	}
	if all || f.isSet("quantity") {
		in.QuantityAvailable = f.quantityPtr()
	}
	if all || f.isSet("image-url") {
		in.ImageURL = f.imageURL
	}
	if all || f.isSet("inactive") {
		in.IsActive = !f.inactive
	}
	return nil
}

// AddRewardCmd implements the addreward command.
type AddRewardCmd struct {
	form rewardForm
}

func (c *AddRewardCmd) Name() string      { return "addreward" }
func (c *AddRewardCmd) Aliases() []string { return nil }
func (c *AddRewardCmd) Synopsis() string  { return "Create a reward" }
func (c *AddRewardCmd) Usage() string {
	return "questctl addreward --title <title> --cost <points> [--type t] [--quantity n] [--description d] [--image-url u] [--inactive]"
}
func (c *AddRewardCmd) NeedsAuth() bool { return true }

func (c *AddRewardCmd) RegisterFlags(fs *flag.FlagSet) {
	c.form.register(fs)
}

func (c *AddRewardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	var in service.RewardInput
	if err := c.form.apply(&in, true); err != nil {
		return usageError(errOut, "%v", err)
	}
	r, err := svc.CreateReward(ctx, in)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	if code, done := emit(cfg, out, errOut, r); done {
		return code
	}
	ok(cfg, out, "🎁 Reward %q created. (%s)", r.Title, r.ID)
	return exitcode.Success
}

// findReward returns the reward with the given ID.
// The backend has no single-reward endpoint.
func findReward(ctx context.Context, svc service.Service, id string) (service.Reward, error) {
	rewards, err := svc.ListRewards(ctx)
	if err != nil {
		return service.Reward{}, err
	}
	for _, r := range rewards {
		if r.ID == id {
			return r, nil
		}
	}
	return service.Reward{}, service.ErrNotFound
}

// rewardArg resolves args[0] to a reward and reports failures.
func rewardArg(ctx context.Context, cfg *config.Config, svc service.Service, args []string, errOut io.Writer) (service.Reward, int, bool) {
	if len(args) == 0 {
		return service.Reward{}, usageError(errOut, "reward id required"), false
	}
	r, err := findReward(ctx, svc, args[0])
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return service.Reward{}, usageError(errOut, "reward not found: %s", args[0]), false
		}
		return service.Reward{}, fail(cfg, errOut, err), false
	}
	return r, exitcode.Success, true
}

// EditRewardCmd implements the editreward command.
type EditRewardCmd struct {
	form rewardForm
}

func (c *EditRewardCmd) Name() string      { return "editreward" }
func (c *EditRewardCmd) Aliases() []string { return nil }
func (c *EditRewardCmd) Synopsis() string  { return "Update a reward" }
func (c *EditRewardCmd) Usage() string     { return "questctl editreward <id> [reward flags]" }
func (c *EditRewardCmd) NeedsAuth() bool   { return true }

func (c *EditRewardCmd) RegisterFlags(fs *flag.FlagSet) {
	c.form.register(fs)
}

func (c *EditRewardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	r, code, found := rewardArg(ctx, cfg, svc, args, errOut)
	if !found {
		return code
	}
	in := r.Input()
	if err := c.form.apply(&in, false); err != nil {
		return usageError(errOut, "%v", err)
	}
	updated, err := svc.UpdateReward(ctx, r.ID, in)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	if code, done := emit(cfg, out, errOut, updated); done {
		return code
	}
	ok(cfg, out, "🎁 Reward %q updated.", updated.Title)
	return exitcode.Success
}

// RmRewardCmd implements the rmreward command. Rewards are deactivated,
// not deleted, so past redemptions keep their reward.
type RmRewardCmd struct{}

func (c *RmRewardCmd) Name() string      { return "rmreward" }
func (c *RmRewardCmd) Aliases() []string { return nil }
func (c *RmRewardCmd) Synopsis() string  { return "Deactivate a reward" }
func (c *RmRewardCmd) Usage() string     { return "questctl rmreward <id>" }
func (c *RmRewardCmd) NeedsAuth() bool   { return true }

func (c *RmRewardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmRewardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	r, code, found := rewardArg(ctx, cfg, svc, args, errOut)
	if !found {
		return code
	}
	in := r.Input()
	in.IsActive = false
	if _, err := svc.UpdateReward(ctx, r.ID, in); err != nil {
		return fail(cfg, errOut, err)
	}
	ok(cfg, out, "🗑 Reward deactivated!")
	return exitcode.Success
}
