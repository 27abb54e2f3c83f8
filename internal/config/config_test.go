package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestFromEnvOverrides(t *testing.T) {
	c, err := FromEnv(lookupFrom(map[string]string{
		"PUFFER_VALIDATE":   "true",
		"PUFFER_SEED":       "-12",
		"PUFFER_LOG_LEVEL":  "debug",
		"PUFFER_LOG_JSON":   "1",
		"PUFFER_DB_DRIVER":  "pgx",
		"PUFFER_DB_DSN":     "postgres://localhost/puffer",
		"PUFFER_ENVS":       " 16 ",
		"PUFFER_EPISODES":   "2",
		"PUFFER_TEAMS_FILE": "teams.yaml",
		"PUFFER_ADDR":       "",
	}))
	require.NoError(t, err)
	assert.True(t, c.Validate)
	assert.Equal(t, int64(-12), c.Seed)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.LogJSON)
	assert.Equal(t, "pgx", c.DBDriver)
	assert.Equal(t, 16, c.Envs)
	assert.Equal(t, 2, c.Episodes)
	assert.Equal(t, "teams.yaml", c.TeamsFile)
	assert.Equal(t, ":8080", c.Addr, "empty values keep the default")
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"bad bool":   {"PUFFER_VALIDATE": "maybe"},
		"bad int":    {"PUFFER_ENVS": "four"},
		"bad driver": {"PUFFER_DB_DRIVER": "mysql"},
		"no envs":    {"PUFFER_ENVS": "0"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PUFFER_EPISODES=5\nPUFFER_SEED=9\n"), 0o600))
	t.Setenv("PUFFER_SEED", "3")
	t.Setenv("PUFFER_EPISODES", "")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.Seed, "process environment wins over the file")

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.NoError(t, err, "a missing dotenv file is not an error")
}

func TestParseTeams(t *testing.T) {
	teams, err := ParseTeams([]byte(`
teams:
  - id: red
    agents: [agent_0, agent_1]
  - id: blue
    agents: [agent_2]
`))
	require.NoError(t, err)
	assert.Equal(t, emulation.Teams{
		{ID: "red", Agents: []string{"agent_0", "agent_1"}},
		{ID: "blue", Agents: []string{"agent_2"}},
	}, teams)
	assert.NoError(t, teams.Validate([]string{"agent_0", "agent_1", "agent_2"}))

	_, err = ParseTeams([]byte("teams: []\n"))
	assert.ErrorIs(t, err, emulation.ErrInvalidTeams)

	_, err = ParseTeams([]byte("teams:\n  - id: red\n    members: [a]\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestLoadTeams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	require.NoError(t, os.WriteFile(path, []byte("teams:\n  - id: solo\n    agents: [agent_0]\n"), 0o600))
	teams, err := LoadTeams(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, teams.IDs())

	_, err = LoadTeams(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
