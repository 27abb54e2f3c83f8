package emulation

import (
	"fmt"
	"slices"
	"sort"
)

// Team is a named group of agents controlled as one.
type Team struct {
	ID     string   `yaml:"id" json:"id"`
	Agents []string `yaml:"agents" json:"agents"`
}

// Teams is an ordered team configuration. Its order is the roster order of a
// teamed adapter.
type Teams []Team

// IDs returns the team ids in order.
func (ts Teams) IDs() []string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}

// Find returns the team with the given id.
func (ts Teams) Find(id string) (Team, bool) {
	for _, t := range ts {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// Validate checks that the teams partition possible exactly: unique non-empty
// team ids, every possible agent in exactly one team and no unknown agents.
func (ts Teams) Validate(possible []string) error {
	if len(ts) == 0 {
		return fmt.Errorf("%w: no teams", ErrInvalidTeams)
	}
	owner := make(map[string]string, len(possible))
	ids := make(map[string]bool, len(ts))
	for _, t := range ts {
		if t.ID == "" {
			return fmt.Errorf("%w: empty team id", ErrInvalidTeams)
		}
		if ids[t.ID] {
			return fmt.Errorf("%w: duplicate team id %q", ErrInvalidTeams, t.ID)
		}
		ids[t.ID] = true
		if len(t.Agents) == 0 {
			return fmt.Errorf("%w: team %q has no agents", ErrInvalidTeams, t.ID)
		}
		for _, a := range t.Agents {
			if prev, dup := owner[a]; dup {
				return fmt.Errorf("%w: agent %q in teams %q and %q", ErrInvalidTeams, a, prev, t.ID)
			}
			if !slices.Contains(possible, a) {
				return fmt.Errorf("%w: team %q names unknown agent %q", ErrInvalidTeams, t.ID, a)
			}
			owner[a] = t.ID
		}
	}
	for _, a := range possible {
		if _, ok := owner[a]; !ok {
			return fmt.Errorf("%w: agent %q is in no team", ErrInvalidTeams, a)
		}
	}
	return nil
}

// GroupIntoTeams splits per-agent data into per-team sub-mappings holding the
// members present in data. Every team appears in the result, possibly empty.
// In strict mode the agents in data must be exactly the agents of all teams;
// otherwise absent members are allowed. Agents outside every team are always
// an error.
func GroupIntoTeams[T any](ts Teams, data map[string]T, strict bool) (map[string]map[string]T, error) {
	grouped := make(map[string]map[string]T, len(ts))
	seen := 0
	for _, t := range ts {
		members := make(map[string]T, len(t.Agents))
		for _, a := range t.Agents {
			if v, ok := data[a]; ok {
				members[a] = v
				seen++
			} else if strict {
				return nil, fmt.Errorf("%w: agent %q of team %q missing", ErrInvalidTeams, a, t.ID)
			}
		}
		grouped[t.ID] = members
	}
	if seen != len(data) {
		return nil, fmt.Errorf("%w: agents %v are in no team", ErrInvalidTeams, ungrouped(ts, data))
	}
	return grouped, nil
}

func ungrouped[T any](ts Teams, data map[string]T) []string {
	var out []string
	for a := range data {
		found := false
		for _, t := range ts {
			if slices.Contains(t.Agents, a) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

// UngroupFromTeams merges per-team sub-mappings back into one per-agent
// mapping. It inverts GroupIntoTeams.
func UngroupFromTeams[T any](grouped map[string]map[string]T) map[string]T {
	out := make(map[string]T)
	for _, members := range grouped {
		for a, v := range members {
			out[a] = v
		}
	}
	return out
}
