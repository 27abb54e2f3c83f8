package envs

import (
	"fmt"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/space"
)

// Move directions shared by Walker and Arena.
const (
	MoveStay  = 0
	MoveUp    = 1
	MoveDown  = 2
	MoveLeft  = 3
	MoveRight = 4
	NumMoves  = 5
)

var moveDelta = [NumMoves][2]int{{0, 0}, {0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// Walker rewards reaching a goal cell on a square grid. Observations are
// {pos, goal, steps}; actions are {move, sprint}, where sprint doubles the
// stride.
type Walker struct {
	Size     int
	MaxSteps int

	state WalkerState
}

// WalkerState is the complete state of a Walker episode.
type WalkerState struct {
	Pos   [2]int
	Goal  [2]int
	Steps int
	Done  bool
	RNG   rng
}

// NewWalker returns a Walker on a size×size grid ending after maxSteps.
func NewWalker(size, maxSteps int) *Walker {
	return &Walker{Size: size, MaxSteps: maxSteps, state: WalkerState{RNG: newRNG(1)}}
}

func (w *Walker) ObservationSpace() space.Space {
	hi := float64(w.Size - 1)
	return space.NewDict(
		space.Field{Name: "pos", Space: space.NewBox(0, hi, space.Int32, 2)},
		space.Field{Name: "goal", Space: space.NewBox(0, hi, space.Int32, 2)},
		space.Field{Name: "steps", Space: space.NewDiscrete(int64(w.MaxSteps + 1))},
	)
}

func (w *Walker) ActionSpace() space.Space {
	return space.NewDict(
		space.Field{Name: "move", Space: space.NewDiscrete(NumMoves)},
		space.Field{Name: "sprint", Space: space.NewDiscrete(2)},
	)
}

func (w *Walker) observe() any {
	s := &w.state
	return space.NewMap(
		"pos", space.Vector(space.Int32, float64(s.Pos[0]), float64(s.Pos[1])),
		"goal", space.Vector(space.Int32, float64(s.Goal[0]), float64(s.Goal[1])),
		"steps", s.Steps,
	)
}

// Reset places the walker and the goal on distinct random cells.
func (w *Walker) Reset(seed *int64) (any, error) {
	r := w.state.RNG
	if seed != nil || r == 0 {
		r = newRNG(seedOr(seed, 1))
	}
	w.state = WalkerState{RNG: r}
	s := &w.state
	s.Pos = [2]int{s.RNG.intN(w.Size), s.RNG.intN(w.Size)}
	for {
		s.Goal = [2]int{s.RNG.intN(w.Size), s.RNG.intN(w.Size)}
		if s.Goal != s.Pos || w.Size == 1 {
			break
		}
	}
	return w.observe(), nil
}

// Step moves the walker. Reaching the goal pays 1; every other step costs
// 0.01.
func (w *Walker) Step(action any) (any, float64, bool, emulation.Info, error) {
	s := &w.state
	if s.Done {
		return nil, 0, false, nil, fmt.Errorf("walker: step after episode end")
	}
	move, err := intField(action, "move", NumMoves)
	if err != nil {
		return nil, 0, false, nil, fmt.Errorf("walker: %w", err)
	}
	sprint, err := intField(action, "sprint", 2)
	if err != nil {
		return nil, 0, false, nil, fmt.Errorf("walker: %w", err)
	}

	stride := 1 + sprint
	s.Pos[0] = clamp(s.Pos[0]+moveDelta[move][0]*stride, 0, w.Size-1)
	s.Pos[1] = clamp(s.Pos[1]+moveDelta[move][1]*stride, 0, w.Size-1)
	s.Steps++

	reward := -0.01
	reached := s.Pos == s.Goal
	if reached {
		reward = 1
	}
	s.Done = reached || s.Steps >= w.MaxSteps
	info := emulation.Info{"distance": manhattan(s.Pos, s.Goal)}
	if s.Done {
		info["reached"] = reached
	}
	return w.observe(), reward, s.Done, info, nil
}

// State returns a copy of the current state.
func (w *Walker) State() WalkerState { return w.state }

// Restore replaces the current state.
func (w *Walker) Restore(s WalkerState) { w.state = s }

func (w *Walker) Close() error { return nil }

// intField reads a categorical value in [0, n) from a mapping action.
func intField(action any, key string, n int) (int, error) {
	var v any
	var ok bool
	switch m := action.(type) {
	case *space.Map:
		v, ok = m.Get(key)
	case map[string]any:
		v, ok = m[key]
	default:
		return 0, fmt.Errorf("action must be a mapping, got %T", action)
	}
	if !ok {
		return 0, fmt.Errorf("action missing %q", key)
	}
	return categorical(v, key, n)
}

func categorical(v any, name string, n int) (int, error) {
	var x int
	switch c := v.(type) {
	case int:
		x = c
	case int64:
		x = int(c)
	case space.Array:
		if len(c.Data) != 1 {
			return 0, fmt.Errorf("%s: want one value, got shape %v", name, c.Shape)
		}
		x = c.Int(0)
	default:
		return 0, fmt.Errorf("%s: unsupported value %T", name, v)
	}
	if x < 0 || x >= n {
		return 0, fmt.Errorf("%s: %d out of range [0, %d)", name, x, n)
	}
	return x, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func manhattan(a, b [2]int) int {
	return abs(a[0]-b[0]) + abs(a[1]-b[1])
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
