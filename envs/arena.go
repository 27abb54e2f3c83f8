package envs

import (
	"fmt"
	"math"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/space"
)

// MaxArenaAgents bounds the population of an Arena.
const MaxArenaAgents = 16

// Arena is a parallel skirmish on a square grid. Every agent observes
// {self: (pos, hp), nearest} where nearest is the offset to the closest other
// active agent, and acts with (move, attack). An attack hits every other
// active agent within one cell. Agents at zero hp are eliminated; the episode
// ends when at most one agent remains or after MaxSteps.
type Arena struct {
	Size     int
	MaxHP    int
	MaxSteps int

	names []string
	state ArenaState
}

// ArenaState is the complete state of an Arena episode.
type ArenaState struct {
	Pos    [MaxArenaAgents][2]int
	HP     [MaxArenaAgents]int
	Active [MaxArenaAgents]bool
	Steps  int
	RNG    rng
}

// NewArena returns an Arena with agents named agent_0 … agent_{n-1}.
func NewArena(numAgents, size, maxHP, maxSteps int) (*Arena, error) {
	if numAgents < 1 || numAgents > MaxArenaAgents {
		return nil, fmt.Errorf("arena: %d agents, want 1..%d", numAgents, MaxArenaAgents)
	}
	a := &Arena{Size: size, MaxHP: maxHP, MaxSteps: maxSteps, state: ArenaState{RNG: newRNG(1)}}
	for i := 0; i < numAgents; i++ {
		a.names = append(a.names, fmt.Sprintf("agent_%d", i))
	}
	return a, nil
}

func (a *Arena) PossibleAgents() []string { return append([]string{}, a.names...) }

func (a *Arena) Agents() []string {
	var out []string
	for i, name := range a.names {
		if a.state.Active[i] {
			out = append(out, name)
		}
	}
	return out
}

func (a *Arena) ObservationSpace(string) space.Space {
	hi := float64(a.Size - 1)
	return space.NewDict(
		space.Field{Name: "self", Space: space.NewTuple(
			space.NewBox(0, hi, space.Int32, 2),
			space.NewDiscrete(int64(a.MaxHP+1)),
		)},
		space.Field{Name: "nearest", Space: space.NewBox(-hi, hi, space.Int32, 2)},
	)
}

func (a *Arena) ActionSpace(string) space.Space {
	return space.NewTuple(space.NewDiscrete(NumMoves), space.NewDiscrete(2))
}

func (a *Arena) index(name string) (int, bool) {
	for i, n := range a.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// nearest returns the offset from agent i to the closest other active agent,
// or zero when i is alone.
func (a *Arena) nearest(i int) [2]int {
	s := &a.state
	best, off := math.MaxInt, [2]int{}
	for j := range a.names {
		if j == i || !s.Active[j] {
			continue
		}
		if d := manhattan(s.Pos[i], s.Pos[j]); d < best {
			best = d
			off = [2]int{s.Pos[j][0] - s.Pos[i][0], s.Pos[j][1] - s.Pos[i][1]}
		}
	}
	return off
}

func (a *Arena) observe(i int) any {
	s := &a.state
	near := a.nearest(i)
	return space.NewMap(
		"self", []any{
			space.Vector(space.Int32, float64(s.Pos[i][0]), float64(s.Pos[i][1])),
			s.HP[i],
		},
		"nearest", space.Vector(space.Int32, float64(near[0]), float64(near[1])),
	)
}

// Reset scatters every agent at full hp.
func (a *Arena) Reset(seed *int64) (map[string]any, error) {
	r := a.state.RNG
	if seed != nil || r == 0 {
		r = newRNG(seedOr(seed, 1))
	}
	a.state = ArenaState{RNG: r}
	s := &a.state
	for i := range a.names {
		s.Pos[i] = [2]int{s.RNG.intN(a.Size), s.RNG.intN(a.Size)}
		s.HP[i] = a.MaxHP
		s.Active[i] = true
	}
	obs := make(map[string]any, len(a.names))
	for i, name := range a.names {
		obs[name] = a.observe(i)
	}
	return obs, nil
}

// Step applies moves in roster order and then all attacks at once. Each hit
// pays the attacker 1; elimination costs -1. Agents without an action stay
// put and do not attack.
func (a *Arena) Step(actions map[string]any) (map[string]any, map[string]float64, map[string]bool, map[string]emulation.Info, error) {
	s := &a.state
	var moves, attacks [MaxArenaAgents]int
	for name, act := range actions {
		i, ok := a.index(name)
		if !ok || !s.Active[i] {
			return nil, nil, nil, nil, fmt.Errorf("arena: action for inactive agent %q", name)
		}
		t, ok := act.([]any)
		if !ok || len(t) != 2 {
			return nil, nil, nil, nil, fmt.Errorf("arena: action of %q must be a (move, attack) tuple, got %v", name, act)
		}
		var err error
		if moves[i], err = categorical(t[0], "move", NumMoves); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("arena: %q: %w", name, err)
		}
		if attacks[i], err = categorical(t[1], "attack", 2); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("arena: %q: %w", name, err)
		}
	}

	var started [MaxArenaAgents]bool
	rewards := make(map[string]float64)
	for i, name := range a.names {
		if !s.Active[i] {
			continue
		}
		started[i] = true
		rewards[name] = 0
		s.Pos[i][0] = clamp(s.Pos[i][0]+moveDelta[moves[i]][0], 0, a.Size-1)
		s.Pos[i][1] = clamp(s.Pos[i][1]+moveDelta[moves[i]][1], 0, a.Size-1)
	}

	var damage [MaxArenaAgents]int
	for i := range a.names {
		if !started[i] || attacks[i] == 0 {
			continue
		}
		for j := range a.names {
			if j != i && started[j] && manhattan(s.Pos[i], s.Pos[j]) <= 1 {
				damage[j]++
				rewards[a.names[i]]++
			}
		}
	}

	dones := make(map[string]bool)
	remaining := 0
	for i, name := range a.names {
		if !started[i] {
			continue
		}
		s.HP[i] = max(s.HP[i]-damage[i], 0)
		if s.HP[i] == 0 {
			rewards[name]--
			dones[name] = true
			s.Active[i] = false
			continue
		}
		dones[name] = false
		remaining++
	}

	s.Steps++
	if remaining <= 1 || s.Steps >= a.MaxSteps {
		for i, name := range a.names {
			if s.Active[i] {
				dones[name] = true
				s.Active[i] = false
			}
		}
	}

	obs := make(map[string]any, len(rewards))
	infos := make(map[string]emulation.Info, len(rewards))
	for i, name := range a.names {
		if started[i] {
			obs[name] = a.observe(i)
			infos[name] = emulation.Info{"hp": s.HP[i]}
		}
	}
	return obs, rewards, dones, infos, nil
}

// State returns a copy of the current state.
func (a *Arena) State() ArenaState { return a.state }

// Restore replaces the current state.
func (a *Arena) Restore(s ArenaState) { a.state = s }

func (a *Arena) Close() error { return nil }
