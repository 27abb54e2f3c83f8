package emulation

import (
	"fmt"

	"github.com/alexunderch/PufferLib/space"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SingleOptions configures NewSingle.
type SingleOptions struct {
	// Exactly one of Env and EnvCreator must be set.
	Env        Env
	EnvCreator func() (Env, error)

	// Postprocessor builds the adapter's postprocessor. Defaults to NewBase.
	Postprocessor PostprocessorFactory

	// Validate checks every action and observation against its space.
	Validate bool

	Logger *logrus.Entry

	// SpaceSeed seeds the sample used to infer the featurized observation
	// schema.
	SpaceSeed int64
}

// Single adapts an Env to flat observations and MultiDiscrete actions.
type Single struct {
	ID uuid.UUID

	env      Env
	pp       Postprocessor
	l        *layout
	validate bool
	log      *logrus.Entry

	initialized bool
	done        bool
}

// NewSingle builds the adapter and derives its spaces.
func NewSingle(opts SingleOptions) (*Single, error) {
	env, err := makeObject(opts.Env, opts.EnvCreator)
	if err != nil {
		return nil, err
	}
	factory := opts.Postprocessor
	if factory == nil {
		factory = NewBase
	}

	s := &Single{
		ID:       uuid.New(),
		env:      env,
		pp:       factory(env),
		validate: opts.Validate,
		done:     true,
	}
	s.log = defaultLogger(opts.Logger).WithField("env_id", s.ID)

	s.l, err = newLayout(env.ObservationSpace(), env.ActionSpace(), s.pp, spaceRNG(opts.SpaceSeed))
	if err != nil {
		return nil, fmt.Errorf("derive spaces: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"obs":    s.l.box,
		"action": s.l.nvec,
	}).Debug("Derived flat spaces")
	return s, nil
}

// ObservationSpace returns the flat observation Box.
func (s *Single) ObservationSpace() *space.Box { return s.l.box }

// ActionSpace returns the MultiDiscrete action space.
func (s *Single) ActionSpace() *space.MultiDiscrete { return s.l.nvec }

// StructuredObservationSpace returns the wrapped environment's observation
// space.
func (s *Single) StructuredObservationSpace() space.Space { return s.l.obs }

// StructuredActionSpace returns the wrapped environment's action space.
func (s *Single) StructuredActionSpace() space.Space { return s.l.act }

// FeatureSpace returns the schema of the featurized observation, for
// learners that unpack batched observations with space.UnpackBatched.
func (s *Single) FeatureSpace() space.Space { return s.l.features }

// PadObservation returns the zero observation of the flat layout.
func (s *Single) PadObservation() space.Array { return s.l.pad }

// Env returns the wrapped environment.
func (s *Single) Env() Env { return s.env }

// Done reports whether the current episode has ended.
func (s *Single) Done() bool { return s.done }

// Reset starts an episode and returns its flat first observation.
func (s *Single) Reset(seed *int64) (space.Array, error) {
	obs, err := seedAndReset(s.env, seed, s.env.Reset, s.log)
	if err != nil {
		return space.Array{}, fmt.Errorf("reset: %w", err)
	}
	s.initialized = true
	s.done = false

	s.pp.Reset(obs)
	flat, err := s.l.observe(s.pp, obs)
	if err != nil {
		return space.Array{}, fmt.Errorf("reset observation: %w", err)
	}
	s.log.Debug("Reset")
	return flat, nil
}

// Step applies one flat action and returns the flat observation, reward,
// done flag and info.
func (s *Single) Step(action space.Array) (space.Array, float64, bool, Info, error) {
	if !s.initialized {
		return space.Array{}, 0, false, nil, fmt.Errorf("%w: step() called before reset()", ErrAPIUsage)
	}
	if s.done {
		return space.Array{}, 0, false, nil, fmt.Errorf("%w: step() called after environment is done", ErrAPIUsage)
	}

	action = s.pp.Actions(action)
	if s.validate && !space.Contains(s.l.nvec, action) {
		return space.Array{}, 0, false, nil, &SpaceError{Subject: "action", Value: action, Space: s.l.nvec}
	}
	native, err := s.l.decode(action)
	if err != nil {
		return space.Array{}, 0, false, nil, fmt.Errorf("decode action: %w", err)
	}

	obs, reward, done, info, err := s.env.Step(native)
	if err != nil {
		return space.Array{}, 0, false, nil, fmt.Errorf("step: %w", err)
	}
	s.done = done

	fb := s.pp.RewardsDonesInfos(Feedback{Reward: reward, Done: done, Info: info})
	flat, err := s.l.observe(s.pp, obs)
	if err != nil {
		return space.Array{}, 0, false, nil, fmt.Errorf("step observation: %w", err)
	}
	if s.validate && !space.Contains(s.l.box, flat) {
		return space.Array{}, 0, false, nil, &SpaceError{Subject: "observation", Value: flat, Space: s.l.box}
	}
	if done {
		s.log.WithField("info", fb.Info).Info("Episode finished")
	}
	return flat, fb.Reward, fb.Done, fb.Info, nil
}

// Close closes the wrapped environment.
func (s *Single) Close() error { return s.env.Close() }
