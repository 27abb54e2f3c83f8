package envs

import (
	"github.com/emer/etable/etensor"
)

// CorridorActions are the action names a Corridor understands, in the order
// of their Discrete index.
var CorridorActions = []string{"left", "stay", "right"}

// Corridor is an emergent-style world: an agent walks a track of Length
// cells toward its right end. It exposes three state tensors:
//
//	pos     one-hot [1, Length] position
//	last    one-hot [1, len(CorridorActions)] echo of the last action input
//	reward  [1], 1 on the step that reaches the end
//
// It is served through bridge/emer, which passes the chosen action index as
// the Action input tensor.
type Corridor struct {
	Length int

	pos    int
	last   int
	states map[string]etensor.Tensor
}

// NewCorridor returns a Corridor of length cells; lengths below 2 become 2.
func NewCorridor(length int) *Corridor {
	length = max(length, 2)
	return &Corridor{Length: length, last: -1, states: map[string]etensor.Tensor{
		"pos":    etensor.NewFloat32([]int{1, length}, nil, []string{"1", "X"}),
		"last":   etensor.NewFloat32([]int{1, len(CorridorActions)}, nil, []string{"1", "A"}),
		"reward": etensor.NewFloat32([]int{1}, nil, nil),
	}}
}

func (c *Corridor) render(reward float32) {
	pos := c.states["pos"].(*etensor.Float32)
	for i := range pos.Values {
		pos.Values[i] = 0
	}
	pos.Values[c.pos] = 1
	last := c.states["last"].(*etensor.Float32)
	for i := range last.Values {
		last.Values[i] = 0
	}
	if c.last >= 0 {
		last.Values[c.last] = 1
	}
	c.states["reward"].(*etensor.Float32).Values[0] = reward
}

// Init starts run at a cell drawn from the run number, never the end cell.
func (c *Corridor) Init(run int) {
	r := newRNG(int64(run) + 1)
	c.pos = r.intN(c.Length - 1)
	c.last = -1
	c.render(0)
}

// Step reports false once the agent stands on the end cell.
func (c *Corridor) Step() bool {
	if c.pos == c.Length-1 {
		c.render(1)
		return false
	}
	c.render(0)
	return true
}

func (c *Corridor) State(element string) etensor.Tensor { return c.states[element] }

// Action moves the agent. input carries the action index; an input that
// disagrees with the name is ignored for the echo.
func (c *Corridor) Action(action string, input etensor.Tensor) {
	switch action {
	case "left":
		c.pos = max(c.pos-1, 0)
	case "right":
		c.pos = min(c.pos+1, c.Length-1)
	}
	c.last = -1
	if input == nil || input.Len() == 0 {
		return
	}
	if idx := int(input.FloatVal1D(0)); idx >= 0 && idx < len(CorridorActions) && CorridorActions[idx] == action {
		c.last = idx
	}
}

// LastAction returns the index echoed by the last Action, or -1.
func (c *Corridor) LastAction() int { return c.last }
