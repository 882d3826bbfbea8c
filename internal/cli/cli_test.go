package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("LIFEIO_HOME", home)
	t.Setenv("LOG_LEVEL", "error")
	return home
}

// execute runs the root command with fresh flag state and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	userID, logStart, logEnd, configForce = "", "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// ─── Activities ────────────────────────────────────────────────────────────

func TestLogListRm(t *testing.T) {
	setupHome(t)

	out, err := execute(t, "log", "Work", "--user", "u1",
		"--start", "2024-05-10T09:00:00Z", "--end", "2024-05-10T10:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged Work")
	assert.Contains(t, out, "+72.00 XP")

	out, err = execute(t, "ls", "--user", "u1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Work")
	assert.Contains(t, lines[1], "72.00")

	id := strings.Fields(lines[1])[0]
	out, err = execute(t, "rm", id, "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed "+id)

	out, err = execute(t, "ls", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "No activities yet")
}

func TestLog_OverlapReplaces(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "log", "Work", "--user", "u1",
		"--start", "2024-05-10T09:00:00Z", "--end", "2024-05-10T10:00:00Z")
	require.NoError(t, err)
	_, err = execute(t, "log", "Study", "--user", "u1",
		"--start", "2024-05-10T09:30:00Z", "--end", "2024-05-10T11:00:00Z")
	require.NoError(t, err)

	out, err := execute(t, "list", "--user", "u1")
	require.NoError(t, err)
	assert.NotContains(t, out, "Work")
	assert.Contains(t, out, "Study")
}

func TestLog_NegativeXPSign(t *testing.T) {
	setupHome(t)

	out, err := execute(t, "log", "Wasted Time", "--user", "u1",
		"--start", "2024-05-10T20:00:00Z", "--end", "2024-05-10T20:30:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "(-30.00 XP)")
	assert.NotContains(t, out, "+-")
}

func TestLog_Errors(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "log", "Work", "--start", "2024-05-10T09:00:00Z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user")

	_, err = execute(t, "log", "Work", "--user", "u1", "--start", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timestamp")

	_, err = execute(t, "log", "--user", "u1")
	require.Error(t, err)
}

// ─── Stats ─────────────────────────────────────────────────────────────────

func TestStats(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "log", "Workout", "--user", "u1",
		"--start", "2024-05-10T09:00:00Z", "--end", "2024-05-10T10:00:00Z")
	require.NoError(t, err)

	out, err := execute(t, "stats", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Level 0")
	assert.Contains(t, out, "Total 78.00")
	assert.Contains(t, out, "Workout")
	assert.Contains(t, out, "Last 30 days")
}

// ─── Config ────────────────────────────────────────────────────────────────

func TestConfigInit(t *testing.T) {
	home := setupHome(t)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "config.toml")
	_, err = os.Stat(filepath.Join(home, "config.toml"))
	require.NoError(t, err)

	_, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)
}
