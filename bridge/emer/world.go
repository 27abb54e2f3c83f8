package emer

import (
	"fmt"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/space"
	"github.com/emer/etable/etensor"
)

// World is an emergent-style environment. Init restarts it for a run and Step
// advances one trial, reporting false once the episode is over. State reads a
// named state tensor. Action applies a named action; Env passes the action
// index as a one-element int64 input tensor.
type World interface {
	Init(run int)
	Step() bool
	State(element string) etensor.Tensor
	Action(action string, input etensor.Tensor)
}

// Config selects what a wrapped World exposes.
type Config struct {
	// States are the observed state elements, in observation order.
	States []string
	// Actions are the action names, indexed by the Discrete action.
	Actions []string
	// Reward is the state element read as the step reward; its first value
	// is used. Empty means zero reward.
	Reward string
	// MaxSteps ends an episode after this many steps when positive.
	MaxSteps int
}

// Env wraps a World as an emulation.Env. Its observation is a Dict with one
// Box per configured state element; its action is a Discrete over the
// configured action names.
type Env struct {
	world World
	cfg   Config
	obs   *space.Dict

	run   int
	steps int
}

// NewEnv initializes world for run 0 and derives the observation space from
// its current state tensors.
func NewEnv(world World, cfg Config) (*Env, error) {
	if len(cfg.States) == 0 || len(cfg.Actions) == 0 {
		return nil, fmt.Errorf("emer: config needs at least one state and one action")
	}
	world.Init(0)
	fields := make([]space.Field, len(cfg.States))
	for i, name := range cfg.States {
		a, err := readState(world, name)
		if err != nil {
			return nil, err
		}
		lo, hi := a.DType.Bounds()
		fields[i] = space.Field{Name: name, Space: space.NewBox(lo, hi, a.DType, a.Shape...)}
	}
	return &Env{world: world, cfg: cfg, obs: space.NewDict(fields...)}, nil
}

func readState(w World, name string) (space.Array, error) {
	t := w.State(name)
	if t == nil {
		return space.Array{}, fmt.Errorf("emer: world has no state %q", name)
	}
	a, err := FromTensor(t)
	if err != nil {
		return space.Array{}, fmt.Errorf("emer: state %q: %w", name, err)
	}
	return a, nil
}

func (e *Env) ObservationSpace() space.Space { return e.obs }

func (e *Env) ActionSpace() space.Space { return space.NewDiscrete(int64(len(e.cfg.Actions))) }

func (e *Env) observe() (any, error) {
	out := &space.Map{}
	for _, name := range e.cfg.States {
		a, err := readState(e.world, name)
		if err != nil {
			return nil, err
		}
		out.Set(name, a)
	}
	return out, nil
}

// Reset restarts the world. A seed selects the run number; otherwise runs
// count up from the previous one.
func (e *Env) Reset(seed *int64) (any, error) {
	if seed != nil {
		e.run = int(*seed)
	} else {
		e.run++
	}
	e.steps = 0
	e.world.Init(e.run)
	return e.observe()
}

func (e *Env) Step(action any) (any, float64, bool, emulation.Info, error) {
	idx, ok := action.(int)
	if !ok || idx < 0 || idx >= len(e.cfg.Actions) {
		return nil, 0, false, nil, fmt.Errorf("emer: invalid action %v", action)
	}
	name := e.cfg.Actions[idx]
	input, err := ToTensor(space.Ints(idx))
	if err != nil {
		return nil, 0, false, nil, err
	}
	e.world.Action(name, input)
	more := e.world.Step()
	e.steps++

	obs, err := e.observe()
	if err != nil {
		return nil, 0, false, nil, err
	}
	var reward float64
	if e.cfg.Reward != "" {
		r, err := readState(e.world, e.cfg.Reward)
		if err != nil {
			return nil, 0, false, nil, err
		}
		if r.Len() > 0 {
			reward = r.Data[0]
		}
	}
	done := !more || (e.cfg.MaxSteps > 0 && e.steps >= e.cfg.MaxSteps)
	return obs, reward, done, emulation.Info{"action": name, "run": e.run}, nil
}

func (e *Env) Close() error { return nil }
