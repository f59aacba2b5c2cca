package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hitScenario = `name: hit
subscriptions:
  - name: A
    event: hit
    where: [{source: w1}, {destination: w2}, {weapon: sword}]
  - name: B
    event: hit
    where: [{source: w1}]
  - name: C
    event: hit
raises:
  - event: hit
    params: {source: w1, destination: w2, weapon: axe}
    expect: [B, C]
  - event: hit
    params: {source: w1, destination: w2, weapon: sword}
    expect: [C, B, A]
    ordered: true
`

const failingScenario = `name: failing
subscriptions:
  - {name: a, event: hit, where: [{weapon: sword}]}
raises:
  - {event: hit, params: {weapon: axe}, expect: [a]}
`

func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	return executeContext(context.Background(), root, args...)
}

func executeContext(ctx context.Context, root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.ExecuteContext(ctx)
	return outBuf.String(), errBuf.String(), err
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	return exitErr.Code
}

func TestRun_Pass(t *testing.T) {
	path := writeTestFile(t, "hit.yaml", hitScenario)

	out, _, err := executeCommand(NewRootCmd("test"), "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scenario hit: 2 raises, 0 failed")
	assert.Contains(t, out, "ok   [1] hit fired: C, B, A")
}

func TestRun_ExpectationFailure(t *testing.T) {
	path := writeTestFile(t, "failing.yaml", failingScenario)

	out, _, err := executeCommand(NewRootCmd("test"), "run", path)
	require.Error(t, err)
	assert.Equal(t, exitExpectation, exitCode(t, err))
	assert.Contains(t, out, "FAIL [0] hit fired: none")
	assert.Contains(t, err.Error(), "1 of 1 raises")
}

func TestRun_NotFound(t *testing.T) {
	_, _, err := executeCommand(NewRootCmd("test"), "run", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitFileNotFound, exitCode(t, err))
}

func TestRun_Invalid(t *testing.T) {
	path := writeTestFile(t, "bad.yaml", "subscriptions:\n  - {name: a}\n")

	_, _, err := executeCommand(NewRootCmd("test"), "run", path)
	assert.Equal(t, exitInvalid, exitCode(t, err))
	assert.Contains(t, err.Error(), "missing event")
}

func TestRun_NestingLimit(t *testing.T) {
	path := writeTestFile(t, "loop.yaml", `
subscriptions:
  - {name: loop, event: ping, actions: ["raise:0"]}
raises:
  - {event: ping}
`)

	_, _, err := executeCommand(NewRootCmd("test"), "run", "--max-nesting", "3", path)
	assert.Equal(t, exitRuntime, exitCode(t, err))
	assert.Contains(t, err.Error(), "nesting limit")
}

func TestRun_WatchStopsOnCancel(t *testing.T) {
	path := writeTestFile(t, "hit.yaml", hitScenario)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, _, err := executeContext(ctx, NewRootCmd("test"), "run", "--watch", "--debounce", "10ms", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scenario hit: 2 raises, 0 failed")
}

func TestValidate(t *testing.T) {
	path := writeTestFile(t, "hit.yaml", hitScenario)

	out, _, err := executeCommand(NewRootCmd("test"), "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "hit: valid (3 subscriptions, 2 raises)\n", out)
}

func TestValidate_Invalid(t *testing.T) {
	path := writeTestFile(t, "bad.yaml", "raises:\n  - {params: {a: 1}}\n")

	_, _, err := executeCommand(NewRootCmd("test"), "validate", path)
	assert.Equal(t, exitInvalid, exitCode(t, err))
}

func TestScript(t *testing.T) {
	path := writeTestFile(t, "hit.lua", `
bus.listen("hit", { weapon = "sword" }, function(ev)
    print("sword hit on", ev:get("destination"))
end)
bus.raise("hit", { weapon = "sword", destination = "w2" })
`)

	out, _, err := executeCommand(NewRootCmd("test"), "script", "--stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "sword hit on\tw2\n")
	assert.Contains(t, out, "listeners: 1, raises: 1, deliveries: 1")
}

func TestScript_Error(t *testing.T) {
	path := writeTestFile(t, "bad.lua", `error("nope")`)

	_, _, err := executeCommand(NewRootCmd("test"), "script", path)
	assert.Equal(t, exitRuntime, exitCode(t, err))
	assert.Contains(t, err.Error(), "nope")
}

func TestScript_NotFound(t *testing.T) {
	_, _, err := executeCommand(NewRootCmd("test"), "script", filepath.Join(t.TempDir(), "missing.lua"))
	assert.Equal(t, exitFileNotFound, exitCode(t, err))
}

func TestDemo(t *testing.T) {
	out, _, err := executeCommand(NewRootCmd("test"), "demo")
	require.NoError(t, err)

	want := `hero spawned in town
goblin spawned in cave
troll spawned in bridge
hero hit goblin with sword for 7
  the sword glows
hero hit troll with sword for 4
  the troll's hide turns the blow
hero hit goblin with sword for 5
goblin died, killed by hero
  the sword glows
-- level reset --
troll died

9 raises, 11 deliveries, 1 stopped
`
	assert.Equal(t, want, out)
}

func TestConfig_MissingUsesDefaults(t *testing.T) {
	out, _, err := executeCommand(NewRootCmd("test"), "--config", filepath.Join(t.TempDir(), "nope.toml"), "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "9 raises, 11 deliveries, 1 stopped")
}

func TestConfig_Malformed(t *testing.T) {
	cfg := writeTestFile(t, "filterbus.toml", "[log\n")
	_, _, err := executeCommand(NewRootCmd("test"), "--config", cfg, "demo")
	assert.Equal(t, exitConfig, exitCode(t, err))
}

func TestConfig_BadLogLevel(t *testing.T) {
	_, _, err := executeCommand(NewRootCmd("test"), "--log-level", "loud", "demo")
	assert.Equal(t, exitConfig, exitCode(t, err))
}

func TestConfig_FileSetsLogLevel(t *testing.T) {
	cfg := writeTestFile(t, "filterbus.toml", "[log]\nlevel = \"debug\"\n")
	path := writeTestFile(t, "hit.yaml", hitScenario)

	_, stderr, err := executeCommand(NewRootCmd("test"), "--config", cfg, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "scenario valid")
}

func TestTraceFlag(t *testing.T) {
	path := writeTestFile(t, "hit.yaml", hitScenario)

	_, stderr, err := executeCommand(NewRootCmd("test"), "--log-level", "debug", "--trace", "run", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"message":"raise"`)
	assert.Contains(t, stderr, `"component":"bus"`)
}

func TestVersion(t *testing.T) {
	out, _, err := executeCommand(NewRootCmd("1.2.3"), "--version")
	require.NoError(t, err)
	assert.Equal(t, "filterbus version 1.2.3\n", out)
}
