package commands_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questctl/internal/commands"
	"questctl/internal/exitcode"
	"questctl/internal/service"
	"questctl/internal/testutil"
)

func adminFixture() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddAdmin(service.Admin{ID: "a1", Username: "admin", IsSuperAdmin: true, LastLogin: service.Timestamp{Time: fixedNow.Add(-time.Hour)}})
	svc.AddAdmin(service.Admin{ID: "a2", Username: "mod", Permissions: service.Permissions{"quests"}})
	return svc
}

func stubStdin(t *testing.T, s string) {
	t.Helper()
	prev := commands.Stdin
	commands.Stdin = strings.NewReader(s)
	t.Cleanup(func() { commands.Stdin = prev })
}

func TestAdminsCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, newConfig(t), &commands.AdminsCmd{}, adminFixture())

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "super admin")
	assert.Contains(t, stdout, "last login 1h ago")
	assert.Contains(t, stdout, "last login never")
	assert.True(t, strings.HasSuffix(stdout, "2 admin(s), 1 active today, 1 super admin(s)\n"))
}

func TestAddAdminCommand_PasswordFromStdin(t *testing.T) {
	stubStdin(t, "s3cret\n")
	svc := adminFixture()

	stdout, stderr, code := runCommand(t, newConfig(t), &commands.AddAdminCmd{}, svc,
		"--username", "helper", "--password-stdin", "--permissions", "users,verification")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "✓ Admin \"helper\" created.\n", stdout)
	admins := svc.Admins()
	require.Len(t, admins, 3)
	assert.Equal(t, "helper", admins[2].Username)
	assert.Equal(t, service.Permissions{"users", "verification"}, admins[2].Permissions)
	assert.False(t, admins[2].IsSuperAdmin)
}

func TestAddAdminCommand_Validation(t *testing.T) {
	tests := []struct {
		name   string
		argv   []string
		stderr string
	}{
		{"no username", []string{"--password", "x"}, "error: username required (--username)\n"},
		{"no password", []string{"--username", "x"}, "error: password required (--password-stdin)\n"},
		{"bad permission", []string{"--username", "x", "--password", "y", "--permissions", "root"}, "error: unknown permission: root (quests, users, verification)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := adminFixture()
			_, stderr, code := runCommand(t, newConfig(t), &commands.AddAdminCmd{}, svc, tt.argv...)

			assert.Equal(t, exitcode.UserError, code)
			assert.Equal(t, tt.stderr, stderr)
			assert.Zero(t, svc.Calls("CreateAdmin"))
		})
	}
}

func TestAddAdminCommand_Duplicate(t *testing.T) {
	_, stderr, code := runCommand(t, newConfig(t), &commands.AddAdminCmd{}, adminFixture(),
		"--username", "mod", "--password", "pw")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: Username already exists\n", stderr)
}

func TestRmAdminCommand(t *testing.T) {
	svc := adminFixture()

	stdout, _, code := runCommand(t, newConfig(t), &commands.RmAdminCmd{}, svc, "a2")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "🗑 Admin \"mod\" deleted.\n", stdout)
	assert.Len(t, svc.Admins(), 1)
}

func TestRmAdminCommand_BuiltinRefused(t *testing.T) {
	svc := adminFixture()

	_, stderr, code := runCommand(t, newConfig(t), &commands.RmAdminCmd{}, svc, "a1")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: the built-in \"admin\" account cannot be removed\n", stderr)
	assert.Zero(t, svc.Calls("DeleteAdmin"))
}

func TestRmAdminCommand_Unknown(t *testing.T) {
	_, stderr, code := runCommand(t, newConfig(t), &commands.RmAdminCmd{}, adminFixture(), "a9")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: admin not found: a9\n", stderr)
}
