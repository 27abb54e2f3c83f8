package server

import (
	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/space"
)

// Operations understood by a session.
const (
	OpSpaces = "spaces"
	OpReset  = "reset"
	OpStep   = "step"
)

// Request is one client message.
type Request struct {
	Op   string `json:"op"`
	Seed *int64 `json:"seed,omitempty"`
	// Action is the flat MultiDiscrete action of a single-agent session.
	Action []int64 `json:"action,omitempty"`
	// Actions holds flat actions by roster id in a multi-agent session.
	Actions map[string][]int64 `json:"actions,omitempty"`
}

// StepResult is the outcome of one step for one agent or team.
type StepResult struct {
	Obs    []float64      `json:"obs,omitempty"`
	Reward float64        `json:"reward"`
	Done   bool           `json:"done"`
	Info   emulation.Info `json:"info,omitempty"`
}

// BoxSpec describes a flat observation Box.
type BoxSpec struct {
	Shape []int     `json:"shape"`
	DType string    `json:"dtype"`
	Low   []float64 `json:"low"`
	High  []float64 `json:"high"`
}

// Spaces describes one roster entry's flat spaces.
type Spaces struct {
	ObsSpace    BoxSpec `json:"obs_space"`
	ActNVec     []int64 `json:"act_nvec"`
	Fingerprint string  `json:"fingerprint"`
}

// Response answers one Request. Single-agent sessions fill the top-level
// fields; multi-agent sessions fill Roster, Agents and Spaces.
type Response struct {
	Op string `json:"op"`
	StepResult
	Shape []int  `json:"shape,omitempty"`
	DType string `json:"dtype,omitempty"`

	ObsSpace    *BoxSpec `json:"obs_space,omitempty"`
	ActNVec     []int64  `json:"act_nvec,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`

	Roster []string              `json:"roster,omitempty"`
	Agents map[string]StepResult `json:"agents,omitempty"`
	Spaces map[string]Spaces     `json:"spaces,omitempty"`

	Error string `json:"error,omitempty"`
}

func boxSpec(b *space.Box) BoxSpec {
	return BoxSpec{Shape: b.Shape, DType: b.DType.String(), Low: b.Low, High: b.High}
}

func spacesOf(obs *space.Box, act *space.MultiDiscrete, features space.Space) Spaces {
	return Spaces{
		ObsSpace:    boxSpec(obs),
		ActNVec:     act.NVec,
		Fingerprint: space.Fingerprint(space.FlattenSpace(features)),
	}
}

func actionArray(a []int64) space.Array {
	data := make([]float64, len(a))
	for i, v := range a {
		data[i] = float64(v)
	}
	return space.NewArray(space.Int64, []int{len(a)}, data)
}
