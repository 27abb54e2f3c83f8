package emulation

import "github.com/alexunderch/PufferLib/space"

// Feedback is the reward, done flag and info of one agent or team for one
// step. For a team, Reward is the sum over the members present, Done is set
// once every present member is done and Members holds the per-member values.
type Feedback struct {
	Reward  float64
	Done    bool
	Info    Info
	Members map[string]Feedback
}

// Postprocessor customizes how one agent or team sees its environment. The
// adapter owns one instance per agent or team.
type Postprocessor interface {
	// Reset is called with the raw observation at the start of each episode.
	Reset(obs any)
	// Features maps a raw observation to the nested sample that is flattened.
	Features(obs any) any
	// Actions is applied to each flat action before it is decoded.
	Actions(action space.Array) space.Array
	// RewardsDonesInfos is applied to each step's feedback.
	RewardsDonesInfos(fb Feedback) Feedback
}

// PostprocessorFactory builds a Postprocessor with full access to the
// wrapped environment.
type PostprocessorFactory func(env any) Postprocessor

// Base passes everything through unchanged.
type Base struct{}

func NewBase(any) Postprocessor { return Base{} }

func (Base) Reset(any)                              {}
func (Base) Features(obs any) any                   { return obs }
func (Base) Actions(action space.Array) space.Array { return action }
func (Base) RewardsDonesInfos(fb Feedback) Feedback { return fb }

// Basic tracks the episode return and length of its agent or team and
// reports them as "return" and "length" in the info of the step that ends
// it. The episode ends when the feedback is done or, for environments that
// expose Agents, when no agents remain.
type Basic struct {
	Base
	env    any
	Return float64
	Length int
	done   bool
}

func NewBasic(env any) Postprocessor { return &Basic{env: env} }

func (b *Basic) Reset(any) {
	b.Return, b.Length, b.done = 0, 0, false
}

func (b *Basic) RewardsDonesInfos(fb Feedback) Feedback {
	if b.done {
		return fb
	}
	b.Return += fb.Reward
	b.Length++

	ended := fb.Done
	if p, ok := b.env.(interface{ Agents() []string }); ok && len(p.Agents()) == 0 {
		ended = true
	}
	if ended {
		if fb.Info == nil {
			fb.Info = Info{}
		}
		fb.Info["return"] = b.Return
		fb.Info["length"] = b.Length
		b.done = true
	}
	return fb
}
