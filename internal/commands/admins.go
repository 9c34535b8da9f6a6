package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"questctl/internal/config"
	"questctl/internal/dashboard"
	"questctl/internal/exitcode"
	"questctl/internal/output"
	"questctl/internal/service"
)

// builtinAdmin is the account created with the backend. It cannot be removed.
const builtinAdmin = "admin"

// Permission names accepted by --permissions.
var adminPermissions = []string{"quests", "users", "verification"}

// Stdin is read by --password-stdin. Tests replace it.
var Stdin io.Reader = os.Stdin

func init() {
	Register(&AdminsCmd{})
	Register(&AddAdminCmd{})
	Register(&RmAdminCmd{})
}

// AdminsCmd implements the admins command.
type AdminsCmd struct{}

func (c *AdminsCmd) Name() string      { return "admins" }
func (c *AdminsCmd) Aliases() []string { return nil }
func (c *AdminsCmd) Synopsis() string  { return "List operator accounts" }
func (c *AdminsCmd) Usage() string     { return "questctl admins" }
func (c *AdminsCmd) NeedsAuth() bool   { return true }

func (c *AdminsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AdminsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	admins, err := svc.ListAdmins(ctx)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	if code, done := emit(cfg, out, errOut, admins); done {
		return code
	}
	t := now()
	for _, a := range admins {
		output.FormatAdmin(out, a, t)
	}
	s := dashboard.SummarizeAdmins(admins, t)
	fmt.Fprintf(out, "%d admin(s), %d active today, %d super admin(s)\n", s.Total, s.ActiveToday, s.SuperAdmins)
	return exitcode.Success
}

// AddAdminCmd implements the addadmin command.
type AddAdminCmd struct {
	username      string
	password      string
	passwordStdin bool
	super         bool
	permissions   string
}

func (c *AddAdminCmd) Name() string      { return "addadmin" }
func (c *AddAdminCmd) Aliases() []string { return nil }
func (c *AddAdminCmd) Synopsis() string  { return "Create an operator account" }
func (c *AddAdminCmd) Usage() string {
	return "questctl addadmin --username <name> --password-stdin [--super] [--permissions quests,users,verification]"
}
func (c *AddAdminCmd) NeedsAuth() bool { return true }

func (c *AddAdminCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
	fs.BoolVar(&c.super, "super", false, "")
	fs.StringVar(&c.permissions, "permissions", strings.Join(adminPermissions, ","), "")
}

func (c *AddAdminCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	username := strings.TrimSpace(c.username)
	if username == "" {
		return usageError(errOut, "username required (--username)")
	}
	password, err := readPassword(c.password, c.passwordStdin)
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	perms, err := parsePermissions(c.permissions)
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	in := service.AdminInput{
		Username:     username,
		Password:     password,
		IsSuperAdmin: c.super,
		Permissions:  perms,
	}
	if err := svc.CreateAdmin(ctx, in); err != nil {
		return fail(cfg, errOut, err)
	}
	ok(cfg, out, "✓ Admin %q created.", username)
	return exitcode.Success
}

// readPassword returns the flag value or the first line of Stdin.
func readPassword(flagValue string, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		flagValue = strings.TrimRight(line, "\r\n")
	}
	if flagValue == "" {
		return "", errors.New("password required (--password-stdin)")
	}
	return flagValue, nil
}

func parsePermissions(s string) ([]string, error) {
	var perms []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !slices.Contains(adminPermissions, p) {
			return nil, fmt.Errorf("unknown permission: %s (%s)", p, strings.Join(adminPermissions, ", "))
		}
		if !slices.Contains(perms, p) {
			perms = append(perms, p)
		}
	}
	return perms, nil
}

// RmAdminCmd implements the rmadmin command.
type RmAdminCmd struct{}

func (c *RmAdminCmd) Name() string      { return "rmadmin" }
func (c *RmAdminCmd) Aliases() []string { return nil }
func (c *RmAdminCmd) Synopsis() string  { return "Delete an operator account" }
func (c *RmAdminCmd) Usage() string     { return "questctl rmadmin <id>" }
func (c *RmAdminCmd) NeedsAuth() bool   { return true }

func (c *RmAdminCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmAdminCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return usageError(errOut, "admin id required")
	}
	id := args[0]
	admins, err := svc.ListAdmins(ctx)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	idx := slices.IndexFunc(admins, func(a service.Admin) bool { return a.ID == id })
	if idx < 0 {
		return usageError(errOut, "admin not found: %s", id)
	}
	if admins[idx].Username == builtinAdmin {
		return usageError(errOut, "the built-in %q account cannot be removed", builtinAdmin)
	}
	if err := svc.DeleteAdmin(ctx, id); err != nil {
		return fail(cfg, errOut, err)
	}
	ok(cfg, out, "🗑 Admin %q deleted.", admins[idx].Username)
	return exitcode.Success
}
