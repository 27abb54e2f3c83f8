package emulation

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/alexunderch/PufferLib/space"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MultiOptions configures NewMulti.
type MultiOptions struct {
	// Exactly one of Env and EnvCreator must be set.
	Env        ParallelEnv
	EnvCreator func() (ParallelEnv, error)

	// Postprocessor builds one postprocessor per agent, or per team when
	// Teams is set. Defaults to NewBase.
	Postprocessor PostprocessorFactory

	// Teams groups agents into jointly controlled teams. The adapter's
	// roster is then the team ids.
	Teams Teams

	// Validate checks every action and observation against its space.
	Validate bool

	Logger *logrus.Entry

	// SpaceSeed seeds the samples used to infer featurized observation
	// schemas.
	SpaceSeed int64
}

// Multi adapts a ParallelEnv to a constant roster of agents (or teams) with
// flat observations and MultiDiscrete actions.
type Multi struct {
	ID uuid.UUID

	env      ParallelEnv
	teams    Teams
	roster   []string
	pps      map[string]Postprocessor
	layouts  map[string]*layout
	validate bool
	log      *logrus.Entry

	initialized bool
}

// NewMulti builds the adapter, validates its teams and derives the spaces of
// every roster entry.
func NewMulti(opts MultiOptions) (*Multi, error) {
	env, err := makeObject(opts.Env, opts.EnvCreator)
	if err != nil {
		return nil, err
	}
	factory := opts.Postprocessor
	if factory == nil {
		factory = NewBase
	}

	m := &Multi{
		ID:       uuid.New(),
		env:      env,
		roster:   append([]string{}, env.PossibleAgents()...),
		validate: opts.Validate,
	}
	m.log = defaultLogger(opts.Logger).WithField("env_id", m.ID)
	if len(m.roster) == 0 {
		return nil, fmt.Errorf("%w: environment has no possible agents", ErrConfig)
	}
	if opts.Teams != nil {
		if err := opts.Teams.Validate(m.roster); err != nil {
			return nil, err
		}
		m.teams = opts.Teams
		m.roster = opts.Teams.IDs()
	}

	m.pps = make(map[string]Postprocessor, len(m.roster))
	m.layouts = make(map[string]*layout, len(m.roster))
	rng := spaceRNG(opts.SpaceSeed)
	for _, id := range m.roster {
		if err := m.derive(id, factory, rng); err != nil {
			return nil, err
		}
	}
	m.log.WithFields(logrus.Fields{
		"roster": m.roster,
		"teams":  m.teams != nil,
	}).Debug("Derived flat spaces")
	return m, nil
}

func (m *Multi) derive(id string, factory PostprocessorFactory, rng *rand.Rand) error {
	var obs, act space.Space
	if m.teams == nil {
		obs, act = m.env.ObservationSpace(id), m.env.ActionSpace(id)
	} else {
		// Team ids are not agents; only members are queried.
		t, _ := m.teams.Find(id)
		obsFields := make([]space.Field, len(t.Agents))
		actFields := make([]space.Field, len(t.Agents))
		for i, a := range t.Agents {
			obsFields[i] = space.Field{Name: a, Space: m.env.ObservationSpace(a)}
			actFields[i] = space.Field{Name: a, Space: m.env.ActionSpace(a)}
		}
		obs, act = space.NewDict(obsFields...), space.NewDict(actFields...)
	}
	pp := factory(m.env)
	l, err := newLayout(obs, act, pp, rng)
	if err != nil {
		return fmt.Errorf("derive spaces of %q: %w", id, err)
	}
	m.pps[id] = pp
	m.layouts[id] = l
	return nil
}

func (m *Multi) layout(id string) (*layout, error) {
	l, ok := m.layouts[id]
	if !ok {
		return nil, &InvalidAgentError{Agent: id, Valid: m.Roster()}
	}
	return l, nil
}

// ObservationSpace returns the flat observation Box of an agent or team.
func (m *Multi) ObservationSpace(id string) (*space.Box, error) {
	l, err := m.layout(id)
	if err != nil {
		return nil, err
	}
	return l.box, nil
}

// ActionSpace returns the MultiDiscrete action space of an agent or team.
func (m *Multi) ActionSpace(id string) (*space.MultiDiscrete, error) {
	l, err := m.layout(id)
	if err != nil {
		return nil, err
	}
	return l.nvec, nil
}

// FeatureSpace returns the featurized observation schema of an agent or team.
func (m *Multi) FeatureSpace(id string) (space.Space, error) {
	l, err := m.layout(id)
	if err != nil {
		return nil, err
	}
	return l.features, nil
}

// StructuredObservationSpace returns the raw observation space of an agent,
// or the Dict of its members' spaces for a team.
func (m *Multi) StructuredObservationSpace(id string) (space.Space, error) {
	l, err := m.layout(id)
	if err != nil {
		return nil, err
	}
	return l.obs, nil
}

// StructuredActionSpace is StructuredObservationSpace for actions.
func (m *Multi) StructuredActionSpace(id string) (space.Space, error) {
	l, err := m.layout(id)
	if err != nil {
		return nil, err
	}
	return l.act, nil
}

// SingleObservationSpace returns the observation Box of the first roster
// entry, the shared space for homogeneous agents.
func (m *Multi) SingleObservationSpace() *space.Box { return m.layouts[m.roster[0]].box }

// SingleActionSpace returns the action space of the first roster entry.
func (m *Multi) SingleActionSpace() *space.MultiDiscrete { return m.layouts[m.roster[0]].nvec }

// Roster returns the constant agent or team ids every step is padded to.
func (m *Multi) Roster() []string { return append([]string{}, m.roster...) }

// Teams returns the team configuration, nil when agents act individually.
func (m *Multi) Teams() Teams { return m.teams }

// Agents returns the wrapped environment's active agents.
func (m *Multi) Agents() []string { return m.env.Agents() }

// Done reports whether no agents remain active.
func (m *Multi) Done() bool { return len(m.env.Agents()) == 0 }

// Env returns the wrapped environment.
func (m *Multi) Env() ParallelEnv { return m.env }

// Reset starts an episode and returns the flat first observation of every
// roster entry.
func (m *Multi) Reset(seed *int64) (map[string]space.Array, error) {
	obs, err := seedAndReset(m.env, seed, m.env.Reset, m.log)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	m.initialized = true

	raw, err := m.group(obs, true)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	out := make(map[string]space.Array, len(m.roster))
	for _, id := range m.roster {
		ob, ok := raw[id]
		m.pps[id].Reset(ob)
		if !ok {
			out[id] = m.layouts[id].pad
			continue
		}
		if out[id], err = m.layouts[id].observe(m.pps[id], ob); err != nil {
			return nil, fmt.Errorf("reset observation of %q: %w", id, err)
		}
	}
	m.log.Debug("Reset")
	return out, nil
}

// group keys raw observations by roster id. With teams, each team with at
// least one member present gets a mapping over all its members in team order;
// absent members are filled with the zero sample of their space.
func (m *Multi) group(obs map[string]any, strict bool) (map[string]any, error) {
	if m.teams == nil {
		for id := range obs {
			if _, ok := m.layouts[id]; !ok {
				return nil, &InvalidAgentError{Agent: id, Valid: m.Roster()}
			}
		}
		return obs, nil
	}
	grouped, err := GroupIntoTeams(m.teams, obs, strict)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(grouped))
	for _, t := range m.teams {
		members := grouped[t.ID]
		if len(members) == 0 {
			continue
		}
		d := m.layouts[t.ID].obs.(*space.Dict)
		teamObs := &space.Map{}
		for _, f := range d.Fields {
			if v, ok := members[f.Name]; ok {
				teamObs.Set(f.Name, v)
			} else {
				teamObs.Set(f.Name, space.Zero(f.Space))
			}
		}
		out[t.ID] = teamObs
	}
	return out, nil
}

// Step applies flat actions keyed by roster id and returns observations,
// rewards, dones and infos padded to the full roster.
func (m *Multi) Step(actions map[string]space.Array) (map[string]space.Array, map[string]float64, map[string]bool, map[string]Info, error) {
	if !m.initialized {
		return nil, nil, nil, nil, fmt.Errorf("%w: step() called before reset()", ErrAPIUsage)
	}
	if m.Done() {
		return nil, nil, nil, nil, fmt.Errorf("%w: step() called after environment is done", ErrAPIUsage)
	}

	ids := make([]string, 0, len(actions))
	for id := range actions {
		if _, err := m.layout(id); err != nil {
			return nil, nil, nil, nil, err
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	native, err := m.decodeActions(ids, actions)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	obs, rewards, dones, infos, err := m.env.Step(native)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("step: %w", err)
	}

	raw, fbs, err := m.feedback(obs, rewards, dones, infos)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("step: %w", err)
	}

	flatObs := make(map[string]space.Array, len(m.roster))
	outRewards := make(map[string]float64, len(raw))
	outDones := make(map[string]bool, len(raw))
	outInfos := make(map[string]Info, len(raw))
	for _, id := range m.roster {
		ob, ok := raw[id]
		if !ok {
			flatObs[id] = m.layouts[id].pad
			continue
		}
		fb := m.pps[id].RewardsDonesInfos(fbs[id])
		if flatObs[id], err = m.layouts[id].observe(m.pps[id], ob); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("step observation of %q: %w", id, err)
		}
		outRewards[id], outDones[id], outInfos[id] = fb.Reward, fb.Done, fb.Info
	}

	// Observations already carry each entry's own pad.
	flatObs, outRewards, outDones, outInfos = PadToConstNumAgents(
		m.roster, flatObs, outRewards, outDones, outInfos, m.layouts[m.roster[0]].pad)

	if m.validate {
		for _, id := range m.roster {
			if l := m.layouts[id]; !space.Contains(l.box, flatObs[id]) {
				return nil, nil, nil, nil, &SpaceError{Subject: id, Value: flatObs[id], Space: l.box}
			}
		}
	}
	if m.Done() {
		m.log.WithField("infos", outInfos).Info("Episode finished")
	}
	return flatObs, outRewards, outDones, outInfos, nil
}

// decodeActions postprocesses, validates and decodes the actions of ids.
// Actions of inactive agents, and of inactive members of a team, are dropped.
func (m *Multi) decodeActions(ids []string, actions map[string]space.Array) (map[string]any, error) {
	active := make(map[string]bool)
	for _, a := range m.env.Agents() {
		active[a] = true
	}

	native := make(map[string]any, len(active))
	for _, id := range ids {
		l := m.layouts[id]
		action := m.pps[id].Actions(actions[id])
		if m.validate && !space.Contains(l.nvec, action) {
			return nil, &SpaceError{Subject: id, Value: action, Space: l.nvec}
		}
		if m.teams == nil && !active[id] {
			continue
		}
		v, err := l.decode(action)
		if err != nil {
			return nil, fmt.Errorf("decode action of %q: %w", id, err)
		}
		if m.teams == nil {
			native[id] = v
			continue
		}
		members := v.(*space.Map)
		grouped := map[string]map[string]any{id: {}}
		for _, a := range members.Keys() {
			if active[a] {
				grouped[id][a], _ = members.Get(a)
			}
		}
		for a, act := range UngroupFromTeams(grouped) {
			native[a] = act
		}
	}
	return native, nil
}

// feedback keys raw observations and step feedback by roster id. A team's
// reward is the sum over its present members and it is done once all of them
// are; its info maps each present member to that member's info.
func (m *Multi) feedback(
	obs map[string]any,
	rewards map[string]float64,
	dones map[string]bool,
	infos map[string]Info,
) (map[string]any, map[string]Feedback, error) {
	raw, err := m.group(obs, false)
	if err != nil {
		return nil, nil, err
	}
	fbs := make(map[string]Feedback, len(raw))
	if m.teams == nil {
		for id := range raw {
			fbs[id] = Feedback{Reward: rewards[id], Done: dones[id], Info: infos[id]}
		}
		return raw, fbs, nil
	}

	gRewards, err := GroupIntoTeams(m.teams, rewards, false)
	if err != nil {
		return nil, nil, err
	}
	gDones, err := GroupIntoTeams(m.teams, dones, false)
	if err != nil {
		return nil, nil, err
	}
	gInfos, err := GroupIntoTeams(m.teams, infos, false)
	if err != nil {
		return nil, nil, err
	}
	present, err := GroupIntoTeams(m.teams, obs, false)
	if err != nil {
		return nil, nil, err
	}
	for id := range raw {
		fb := Feedback{Done: true, Info: Info{}, Members: map[string]Feedback{}}
		for a := range present[id] {
			member := Feedback{Reward: gRewards[id][a], Done: gDones[id][a], Info: gInfos[id][a]}
			fb.Reward += member.Reward
			fb.Done = fb.Done && member.Done
			fb.Info[a] = member.Info
			fb.Members[a] = member
		}
		fbs[id] = fb
	}
	return raw, fbs, nil
}

// Close closes the wrapped environment.
func (m *Multi) Close() error { return m.env.Close() }
