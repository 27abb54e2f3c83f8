// Package emulation adapts single-agent and multi-agent environments with
// arbitrarily nested observation and action spaces to a uniform flat
// interface: every observation is one numeric array described by a Box and
// every action is one integer vector described by a MultiDiscrete.
//
// Multi-agent adapters additionally present a constant roster. Agents (or
// teams) that are absent from a step are padded with a zero observation,
// reward 0, done false and an empty info.
package emulation

import "github.com/alexunderch/PufferLib/space"

// Info carries per-step diagnostic values.
type Info map[string]any

// Env is a single-agent environment with nested spaces.
type Env interface {
	ObservationSpace() space.Space
	ActionSpace() space.Space
	// Reset starts an episode. A nil seed leaves seeding to the environment.
	Reset(seed *int64) (any, error)
	Step(action any) (obs any, reward float64, done bool, info Info, err error)
	Close() error
}

// ParallelEnv is a multi-agent environment where all active agents act at
// once. PossibleAgents is fixed for the life of the environment; Agents
// shrinks as agents finish and is empty once the episode is over.
type ParallelEnv interface {
	PossibleAgents() []string
	Agents() []string
	ObservationSpace(agent string) space.Space
	ActionSpace(agent string) space.Space
	Reset(seed *int64) (map[string]any, error)
	Step(actions map[string]any) (obs map[string]any, rewards map[string]float64, dones map[string]bool, infos map[string]Info, err error)
	Close() error
}

// Seeder is implemented by environments seeded separately from Reset. When
// present the adapter calls Seed and then Reset(nil).
type Seeder interface {
	Seed(seed int64)
}
