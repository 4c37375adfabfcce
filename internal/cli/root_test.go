package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "autotile", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"validate", "resolve", "runs"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}

	show, _, err := cmd.Find([]string{"runs", "show"})
	require.NoError(t, err)
	assert.Equal(t, "show", show.Name())
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "autotile.yaml", configFlag.DefValue)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestResolveCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	resolveCmd, _, err := cmd.Find([]string{"resolve"})
	require.NoError(t, err)

	roomCount := resolveCmd.Flags().Lookup("room-count")
	require.NotNil(t, roomCount)
	assert.Equal(t, "8", roomCount.DefValue)

	for _, name := range []string{"layout", "maze", "rooms", "rules", "seed", "out", "save", "strict"} {
		assert.NotNil(t, resolveCmd.Flags().Lookup(name), "missing --%s", name)
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := WrapExitError(ExitFailure, "invalid rules", errors.New("block 2"))
	assert.Equal(t, "invalid rules: block 2", wrapped.Error())
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("12x8")
	require.NoError(t, err)
	assert.Equal(t, 12, w)
	assert.Equal(t, 8, h)

	w, h, err = parseSize("3X4")
	require.NoError(t, err)
	assert.Equal(t, 3, w)
	assert.Equal(t, 4, h)

	for _, bad := range []string{"12", "x8", "12x", "0x5", "5x-1", "axb"} {
		_, _, err := parseSize(bad)
		assert.Error(t, err, "parseSize(%q)", bad)
	}
}

// testEnv writes a config with a temp SQLite store and quiet logging.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "autotile.yaml")
	content := "store:\n  driver: sqlite\n  sqlite_path: " + filepath.Join(dir, "runs.db") + `
logging:
  level: ERROR
  console_enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidateCommand(t *testing.T) {
	cfg := testEnv(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.rules")
	require.NoError(t, os.WriteFile(good, []byte("10\n_________\n\n11@N10\n????X????\n"), 0644))

	out, _, err := execute(t, "-c", cfg, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "2 rules, 2 distinct patterns, 1 constrained")

	bad := filepath.Join(dir, "bad.rules")
	require.NoError(t, os.WriteFile(bad, []byte("10\n_________\n\n11:0\n_________\n"), 0644))

	out, _, err = execute(t, "-c", cfg, "validate", bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "block 2 (line 4)")

	_, _, err = execute(t, "-c", cfg, "validate", filepath.Join(dir, "missing.rules"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestResolveLayoutFile(t *testing.T) {
	cfg := testEnv(t)
	layoutPath := filepath.Join(t.TempDir(), "room.map")
	require.NoError(t, os.WriteFile(layoutPath, []byte("#####\n#...#\n#####\n"), 0644))

	out, stderr, err := execute(t, "-c", cfg, "resolve", "--layout", layoutPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, stderr, "seed 1:")
}

func TestResolveRequiresOneSource(t *testing.T) {
	cfg := testEnv(t)

	_, _, err := execute(t, "-c", cfg, "resolve")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "-c", cfg, "resolve", "--maze", "3x3", "--rooms", "20x20")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "-c", cfg, "resolve", "--maze", "big")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestResolveMazeToYAML(t *testing.T) {
	cfg := testEnv(t)
	outPath := filepath.Join(t.TempDir(), "maze.yaml")

	out, _, err := execute(t, "-c", cfg, "resolve", "--maze", "4x3", "--seed", "7", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 9x7 map")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Generated with seed: 7")
	assert.Contains(t, string(data), "width: 9")
}

func TestResolveStrictFailsOnUnresolvable(t *testing.T) {
	cfg := testEnv(t)
	dir := t.TempDir()

	// Only matches fully open neighborhoods, so every blocked cell is left over
	rules := filepath.Join(dir, "floor.rules")
	require.NoError(t, os.WriteFile(rules, []byte("10\n_________\n"), 0644))
	layoutPath := filepath.Join(dir, "wall.map")
	require.NoError(t, os.WriteFile(layoutPath, []byte("#.\n"), 0644))

	out, _, err := execute(t, "-c", cfg, "resolve", "--layout", layoutPath, "--rules", rules, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "!")

	_, _, err = execute(t, "-c", cfg, "resolve", "--layout", layoutPath, "--rules", rules)
	assert.NoError(t, err)
}

func TestSaveAndListRuns(t *testing.T) {
	cfg := testEnv(t)

	out, _, err := execute(t, "-c", cfg, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved runs")

	out, _, err = execute(t, "-c", cfg, "resolve", "--maze", "3x3", "--save")
	require.NoError(t, err)
	require.Contains(t, out, "Saved run ")

	id := strings.TrimSpace(out[strings.LastIndex(out, "Saved run ")+len("Saved run "):])

	out, _, err = execute(t, "-c", cfg, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "maze 3x3")
	assert.Contains(t, out, "7x7")

	out, _, err = execute(t, "-c", cfg, "runs", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+id)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 8)
}

func TestShowRunErrors(t *testing.T) {
	cfg := testEnv(t)

	_, _, err := execute(t, "-c", cfg, "runs", "show", "not-a-uuid")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "-c", cfg, "runs", "show", "6f1f2c1e-8a3b-4b7e-9c55-0d3a1b2c4d5e")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
