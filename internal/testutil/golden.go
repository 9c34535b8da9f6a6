package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set.
const UpdateGoldenEnv = "QUESTCTL_UPDATE_GOLDEN"

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]")

// StripANSI removes terminal colour sequences so styled output can be
// compared as plain text.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// Golden compares got, stripped of colour, against testdata/<name>.golden.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	plain := []byte(StripANSI(string(got)))

	if os.Getenv(UpdateGoldenEnv) != "" {
		require.NoError(t, os.MkdirAll("testdata", 0o755))
		require.NoError(t, os.WriteFile(path, plain, 0o644))
		return
	}

	want, err := os.ReadFile(path)
	require.NoError(t, err, "golden file %s; got:\n%s", path, plain)
	assert.Equal(t, string(want), string(plain), "output mismatch for %s", name)
}
