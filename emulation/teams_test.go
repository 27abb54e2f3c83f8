package emulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var duo = Teams{
	{ID: "red", Agents: []string{"a", "b"}},
	{ID: "blue", Agents: []string{"c"}},
}

func TestTeamsValidate(t *testing.T) {
	possible := []string{"a", "b", "c"}
	require.NoError(t, duo.Validate(possible))

	tests := []struct {
		name  string
		teams Teams
	}{
		{"empty", Teams{}},
		{"missing agent", Teams{{ID: "red", Agents: []string{"a", "b"}}}},
		{"unknown agent", append(Teams{{ID: "green", Agents: []string{"z"}}}, duo...)},
		{"agent in two teams", Teams{{ID: "red", Agents: []string{"a", "b"}}, {ID: "blue", Agents: []string{"b", "c"}}}},
		{"duplicate id", Teams{{ID: "red", Agents: []string{"a", "b"}}, {ID: "red", Agents: []string{"c"}}}},
		{"empty team", append(Teams{{ID: "grey"}}, duo...)},
		{"blank id", Teams{{Agents: []string{"a", "b", "c"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.teams.Validate(possible), ErrInvalidTeams)
		})
	}
}

func TestGroupIntoTeams(t *testing.T) {
	data := map[string]float64{"a": 1, "b": 2, "c": 3}
	grouped, err := GroupIntoTeams(duo, data, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]float64{
		"red":  {"a": 1, "b": 2},
		"blue": {"c": 3},
	}, grouped)

	assert.Equal(t, data, UngroupFromTeams(grouped), "ungroup inverts group")
}

func TestGroupIntoTeamsPartial(t *testing.T) {
	data := map[string]bool{"b": true}

	_, err := GroupIntoTeams(duo, data, true)
	assert.ErrorIs(t, err, ErrInvalidTeams, "strict grouping needs every agent")

	grouped, err := GroupIntoTeams(duo, data, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"b": true}, grouped["red"])
	assert.Empty(t, grouped["blue"])
	assert.Equal(t, data, UngroupFromTeams(grouped))
}

func TestGroupIntoTeamsUnknownAgent(t *testing.T) {
	_, err := GroupIntoTeams(duo, map[string]int{"a": 1, "zed": 2}, false)
	require.ErrorIs(t, err, ErrInvalidTeams)
	assert.Contains(t, err.Error(), "zed")
}

func TestTeamsLookup(t *testing.T) {
	assert.Equal(t, []string{"red", "blue"}, duo.IDs())
	team, ok := duo.Find("blue")
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, team.Agents)
	_, ok = duo.Find("green")
	assert.False(t, ok)
}
