package emulation

import (
	"fmt"
	"math"

	"github.com/alexunderch/PufferLib/space"
)

// scoutEnv is a single-agent env with a {pos, hp} observation and a
// two-part categorical action. It ends after horizon steps.
type scoutEnv struct {
	horizon int
	reward  float64
	// corruptAfterReset makes every step observation carry a NaN position.
	corruptAfterReset bool

	t          int
	lastAction any
	resetSeeds []*int64
	closed     bool
}

func newScoutEnv(horizon int) *scoutEnv { return &scoutEnv{horizon: horizon, reward: 1} }

func (e *scoutEnv) ObservationSpace() space.Space {
	return space.NewDict(
		space.Field{Name: "pos", Space: space.NewBox(-100, 100, space.Float32, 2)},
		space.Field{Name: "hp", Space: space.NewDiscrete(10)},
	)
}

func (e *scoutEnv) ActionSpace() space.Space {
	return space.NewDict(
		space.Field{Name: "a", Space: space.NewDiscrete(5)},
		space.Field{Name: "b", Space: space.NewDiscrete(3)},
	)
}

func (e *scoutEnv) obs() any {
	x := 1 + float64(e.t)
	if e.corruptAfterReset && e.t > 0 {
		x = math.NaN()
	}
	return space.NewMap("hp", 7-e.t, "pos", space.Vector(space.Float32, x, 2))
}

func (e *scoutEnv) Reset(seed *int64) (any, error) {
	e.resetSeeds = append(e.resetSeeds, seed)
	e.t = 0
	return e.obs(), nil
}

func (e *scoutEnv) Step(action any) (any, float64, bool, Info, error) {
	e.lastAction = action
	e.t++
	return e.obs(), e.reward, e.t >= e.horizon, Info{"t": e.t}, nil
}

func (e *scoutEnv) Close() error {
	e.closed = true
	return nil
}

// legacyScoutEnv is seeded through Seed instead of Reset.
type legacyScoutEnv struct {
	*scoutEnv
	seeded []int64
}

func (e *legacyScoutEnv) Seed(seed int64) { e.seeded = append(e.seeded, seed) }

// unseedableScoutEnv rejects seeded resets.
type unseedableScoutEnv struct{ *scoutEnv }

func (e unseedableScoutEnv) Reset(seed *int64) (any, error) {
	if seed != nil {
		return nil, ErrSeedUnsupported
	}
	return e.scoutEnv.Reset(nil)
}

// steerEnv has a continuous action and cannot be adapted.
type steerEnv struct{ *scoutEnv }

func (steerEnv) ActionSpace() space.Space { return space.NewBox(-1, 1, space.Float32, 1) }

// skirmishEnv is a parallel env whose agents observe a Box(2) and pick one
// of four moves. Agents listed in exits[t] report done on step t and leave
// the active set afterwards.
type skirmishEnv struct {
	possible []string
	exits    map[int][]string
	// corruptStep, when positive, is the step whose observations carry NaN.
	corruptStep int

	t          int
	active     []string
	lastAction map[string]any
}

func newSkirmishEnv(possible []string, exits map[int][]string) *skirmishEnv {
	return &skirmishEnv{possible: possible, exits: exits}
}

func (e *skirmishEnv) PossibleAgents() []string { return append([]string{}, e.possible...) }
func (e *skirmishEnv) Agents() []string         { return append([]string{}, e.active...) }

func (e *skirmishEnv) ObservationSpace(string) space.Space {
	return space.NewBox(0, 100, space.Float32, 2)
}

func (e *skirmishEnv) ActionSpace(string) space.Space { return space.NewDiscrete(4) }

func (e *skirmishEnv) agentObs(i int) space.Array {
	if e.corruptStep > 0 && e.t == e.corruptStep {
		return space.Vector(space.Float32, math.NaN(), float64(i+1))
	}
	return space.Vector(space.Float32, float64(e.t), float64(i+1))
}

func (e *skirmishEnv) Reset(*int64) (map[string]any, error) {
	e.t = 0
	e.active = append([]string{}, e.possible...)
	obs := make(map[string]any, len(e.active))
	for i, a := range e.possible {
		obs[a] = e.agentObs(i)
	}
	return obs, nil
}

func (e *skirmishEnv) Step(actions map[string]any) (map[string]any, map[string]float64, map[string]bool, map[string]Info, error) {
	e.lastAction = actions
	e.t++
	leaving := make(map[string]bool)
	for _, a := range e.exits[e.t] {
		leaving[a] = true
	}

	obs := make(map[string]any)
	rewards := make(map[string]float64)
	dones := make(map[string]bool)
	infos := make(map[string]Info)
	var still []string
	for i, a := range e.possible {
		if !contains(e.active, a) {
			continue
		}
		obs[a] = e.agentObs(i)
		rewards[a] = float64(i + 1)
		dones[a] = leaving[a]
		infos[a] = Info{"t": e.t}
		if !leaving[a] {
			still = append(still, a)
		}
	}
	e.active = still
	return obs, rewards, dones, infos, nil
}

func (e *skirmishEnv) Close() error { return nil }

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// strictSkirmishEnv answers space queries only for possible agents.
type strictSkirmishEnv struct {
	*skirmishEnv
	queried []string
}

func (e *strictSkirmishEnv) check(id string) {
	e.queried = append(e.queried, id)
	if !contains(e.possible, id) {
		panic(fmt.Sprintf("unknown agent %s", id))
	}
}

func (e *strictSkirmishEnv) ObservationSpace(id string) space.Space {
	e.check(id)
	return e.skirmishEnv.ObservationSpace(id)
}

func (e *strictSkirmishEnv) ActionSpace(id string) space.Space {
	e.check(id)
	return e.skirmishEnv.ActionSpace(id)
}
