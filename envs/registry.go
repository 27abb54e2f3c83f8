package envs

import (
	"fmt"

	"github.com/alexunderch/PufferLib/bridge/emer"
	"github.com/alexunderch/PufferLib/emulation"
)

// Reference environment names.
const (
	NameWalker   = "walker"
	NameArena    = "arena"
	NameCorridor = "corridor"
)

// Names lists every registered environment.
func Names() []string { return []string{NameWalker, NameArena, NameCorridor} }

// Options sizes the reference environments built by name.
type Options struct {
	Size     int
	MaxSteps int
	Agents   int
	MaxHP    int
}

// DefaultOptions returns the sizes used when none are configured.
func DefaultOptions() Options {
	return Options{Size: 8, MaxSteps: 64, Agents: 4, MaxHP: 3}
}

// IsParallel reports whether name is a multi-agent environment.
func IsParallel(name string) bool { return name == NameArena }

// SingleCreator returns a creator for the single-agent environment name.
func SingleCreator(name string, opts Options) (func() (emulation.Env, error), error) {
	switch name {
	case NameWalker:
		return func() (emulation.Env, error) { return NewWalker(opts.Size, opts.MaxSteps), nil }, nil
	case NameCorridor:
		return func() (emulation.Env, error) {
			env, err := emer.NewEnv(NewCorridor(opts.Size), emer.Config{
				States:   []string{"pos", "last"},
				Actions:  CorridorActions,
				Reward:   "reward",
				MaxSteps: opts.MaxSteps,
			})
			if err != nil {
				return nil, err
			}
			return env, nil
		}, nil
	}
	return nil, fmt.Errorf("envs: unknown single-agent environment %q", name)
}

// ParallelCreator returns a creator for the multi-agent environment name.
func ParallelCreator(name string, opts Options) (func() (emulation.ParallelEnv, error), error) {
	switch name {
	case NameArena:
		return func() (emulation.ParallelEnv, error) {
			return NewArena(opts.Agents, opts.Size, opts.MaxHP, opts.MaxSteps)
		}, nil
	}
	return nil, fmt.Errorf("envs: unknown multi-agent environment %q", name)
}
