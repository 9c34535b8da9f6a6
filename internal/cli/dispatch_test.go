package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"questctl/internal/cli"
	"questctl/internal/commands"
	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/service"
	"questctl/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// loggedInDir returns a config dir holding a token.
func loggedInDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.TokenFile), []byte(`{"access_token":"abc"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, dispatcher, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, dispatcher, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "questctl 0.1.0\n" {
		t.Errorf("expected 'questctl 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "leaderboard", "--config", t.TempDir(), "--limit")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -limit\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	_, stderr, code := run(t, dispatcher, "users", "--config", t.TempDir())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: questctl login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("ListUsers") != 0 {
		t.Error("backend must not be called without a session")
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, errors.New("failed to read token: permission denied")
	})

	_, stderr, code := run(t, dispatcher, "users", "--config", loggedInDir(t))

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: auth error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FlagsAfterPositionals(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddReward(service.Reward{ID: "r1", Title: "Badge", PointsCost: 10, IsActive: true})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	stdout, stderr, code := run(t, dispatcher, "editreward", "r1", "--cost", "25", "--config", loggedInDir(t))

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "🎁 Reward \"Badge\" updated.\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if got := svc.Rewards()[0].PointsCost; got != 25 {
		t.Errorf("expected cost 25, got %d", got)
	}
}

func TestDispatcher_DoubleDashEndsFlags(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "help", "--", "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: --quiet\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_OutputFormat(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser(service.User{ID: "u1", Username: "alice"})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	dir := loggedInDir(t)

	stdout, _, code := run(t, dispatcher, "users", "--config", dir, "-o", "yaml")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "username: alice") {
		t.Errorf("expected YAML output, got %q", stdout)
	}

	_, stderr, code := run(t, dispatcher, "users", "--config", dir, "--output", "xml")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid output format: xml (table, json, yaml)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, dispatcher, "version", "--debug", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "questctl 0.1.0\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if !strings.Contains(stderr, "dispatch") || !strings.Contains(stderr, "DEBUG") {
		t.Errorf("expected debug log on stderr, got %q", stderr)
	}
}

func TestDispatcher_NoArgs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	stdout, _, code := run(t, dispatcher)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help without a session")
	}

	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), config.AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.TokenFile), []byte(`{"access_token":"abc"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, _, code = run(t, dispatcher)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "Players") {
		t.Errorf("expected the dashboard once logged in, got %q", stdout)
	}
}
