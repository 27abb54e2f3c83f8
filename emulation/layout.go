package emulation

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/alexunderch/PufferLib/space"
	"github.com/sirupsen/logrus"
)

// layout holds the spaces derived once for one agent, team or single-agent
// environment.
type layout struct {
	obs      space.Space // raw observation space
	features space.Space // schema of the featurized observation
	box      *space.Box
	pad      space.Array
	act      space.Space
	flatAct  space.FlatSpace
	nvec     *space.MultiDiscrete
}

// newLayout derives the flat spaces of obs and act. The featurized schema is
// inferred from a featurized sample of obs drawn with rng, and the Box from
// that sample flattened in its own order.
func newLayout(obs, act space.Space, pp Postprocessor, rng *rand.Rand) (*layout, error) {
	l := &layout{obs: obs, act: act}

	feat := pp.Features(space.Sample(obs, rng))
	fs, err := space.SpaceLike(feat)
	if err != nil {
		return nil, fmt.Errorf("featurized observation: %w", err)
	}
	l.features = fs
	leaves, err := space.FlattenSample(feat)
	if err != nil {
		return nil, fmt.Errorf("featurized observation: %w", err)
	}
	sampled := space.Concatenate(leaves)
	// Later observations are flattened by schema; both orders must agree.
	flat, err := l.flatten(feat)
	if err != nil {
		return nil, fmt.Errorf("featurized observation: %w", err)
	}
	if !flat.Equal(sampled) {
		return nil, fmt.Errorf("%w: featurized sample flattens to %v by schema but %v in sample order",
			space.ErrSampleMismatch, flat, sampled)
	}
	l.box, l.pad = space.BoxFor(sampled)

	l.flatAct = space.FlattenSpace(act)
	if l.nvec, err = space.MultiDiscreteFor(l.flatAct); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *layout) flatten(feat any) (space.Array, error) {
	leaves, err := space.Flatten(l.features, feat)
	if err != nil {
		return space.Array{}, err
	}
	return space.Concatenate(leaves), nil
}

// observe featurizes and flattens one raw observation.
func (l *layout) observe(pp Postprocessor, obs any) (space.Array, error) {
	return l.flatten(pp.Features(obs))
}

// decode turns one flat action back into the native nested action.
func (l *layout) decode(action space.Array) (any, error) {
	leaves, err := space.Split(action, l.flatAct, false)
	if err != nil {
		return nil, err
	}
	return space.Unflatten(leaves, l.act)
}

// makeObject returns instance or the result of creator. Exactly one of them
// must be set.
func makeObject[T comparable](instance T, creator func() (T, error)) (T, error) {
	var zero T
	if (instance == zero) == (creator == nil) {
		return zero, fmt.Errorf("%w: exactly one of Env or EnvCreator must be set", ErrConfig)
	}
	if creator == nil {
		return instance, nil
	}
	obj, err := creator()
	if err != nil {
		return zero, fmt.Errorf("create env: %w", err)
	}
	if obj == zero {
		return zero, fmt.Errorf("%w: EnvCreator returned nil", ErrConfig)
	}
	return obj, nil
}

// seedAndReset resets env with seed. Environments implementing Seeder are
// seeded first and reset without a seed; an ErrSeedUnsupported from Reset
// falls back to an unseeded reset with a warning.
func seedAndReset[O any](env any, seed *int64, reset func(*int64) (O, error), log *logrus.Entry) (O, error) {
	if s, ok := env.(Seeder); ok && seed != nil {
		s.Seed(*seed)
		return reset(nil)
	}
	obs, err := reset(seed)
	if errors.Is(err, ErrSeedUnsupported) {
		log.Warn("Environment does not support seeding")
		return reset(nil)
	}
	return obs, err
}

func spaceRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

func defaultLogger(log *logrus.Entry) *logrus.Entry {
	if log != nil {
		return log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
