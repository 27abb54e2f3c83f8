package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with a dotenv path that does not exist.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PUFFER_REDIS_URL", "")
	t.Setenv("PUFFER_DB_DRIVER", "sqlite")
	t.Setenv("PUFFER_DB_DSN", "")
	t.Setenv("PUFFER_LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSpacesWalker(t *testing.T) {
	out, err := run(t, "spaces", "walker", "--size", "5")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "walker\n"))
	assert.Contains(t, out, "flat action: MultiDiscrete([5 2])")
	assert.Contains(t, out, "fingerprint: ")
}

func TestSpacesCorridor(t *testing.T) {
	out, err := run(t, "spaces", "corridor", "--size", "5")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "corridor\n"))
	assert.Contains(t, out, "flat obs:    Box(")
	assert.Contains(t, out, "[8] float32)")
	assert.Contains(t, out, "flat action: MultiDiscrete([3])")

	out, err = run(t, "rollout", "corridor", "--envs", "2", "--episodes", "1", "--size", "3", "--max-steps", "6", "--seed", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "episodes=2 ")
}

func TestSpacesArenaTeams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
teams:
  - id: red
    agents: [agent_0, agent_1]
  - id: blue
    agents: [agent_2]
`), 0o600))

	out, err := run(t, "spaces", "arena", "--agents", "3", "--teams", path)
	require.NoError(t, err)
	assert.Contains(t, out, "red\n")
	assert.Contains(t, out, "blue\n")
	assert.Contains(t, out, "flat action: MultiDiscrete([5 2 5 2])")

	_, err = run(t, "spaces", "arena", "--agents", "4", "--teams", path)
	assert.Error(t, err, "agent_3 is in no team")
}

func TestRolloutCommand(t *testing.T) {
	out, err := run(t, "rollout", "walker", "--envs", "2", "--episodes", "2", "--size", "4", "--max-steps", "5", "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "episodes=4 ")
	assert.Equal(t, 1+4, strings.Count(out, "\n"), "summary plus the recorded episodes")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("PUFFER_JWT_SECRET", "")
	_, err := run(t, "token", "trainer")
	assert.Error(t, err)

	t.Setenv("PUFFER_JWT_SECRET", "k")
	out, err := run(t, "token", "trainer", "--ttl", "1m")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)
}

func TestUnknownEnv(t *testing.T) {
	_, err := run(t, "spaces", "pong")
	assert.ErrorContains(t, err, "unknown environment")
}
