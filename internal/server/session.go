package server

import (
	"errors"
	"fmt"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/envs"
	"github.com/alexunderch/PufferLib/space"
	"github.com/sirupsen/logrus"
)

// session is one connection's adapter.
type session interface {
	spaces() Response
	reset(seed *int64) (Response, error)
	step(req Request) (Response, error)
	close() error
}

func (s *Server) newSession(log *logrus.Entry) (session, error) {
	if envs.IsParallel(s.opts.EnvName) {
		opts, err := s.multiOptions(log)
		if err != nil {
			return nil, err
		}
		m, err := emulation.NewMulti(opts)
		if err != nil {
			return nil, err
		}
		return &multiSession{m: m}, nil
	}

	opts, err := s.singleOptions(log)
	if err != nil {
		return nil, err
	}
	a, err := emulation.NewSingle(opts)
	if err != nil {
		return nil, err
	}
	return &singleSession{s: a}, nil
}

func (s *Server) singleOptions(log *logrus.Entry) (emulation.SingleOptions, error) {
	creator, err := envs.SingleCreator(s.opts.EnvName, s.opts.EnvOptions)
	if err != nil {
		return emulation.SingleOptions{}, err
	}
	return emulation.SingleOptions{
		EnvCreator:    creator,
		Postprocessor: emulation.NewBasic,
		Validate:      s.opts.Validate,
		Logger:        log,
		SpaceSeed:     s.opts.SpaceSeed,
	}, nil
}

func (s *Server) multiOptions(log *logrus.Entry) (emulation.MultiOptions, error) {
	creator, err := envs.ParallelCreator(s.opts.EnvName, s.opts.EnvOptions)
	if err != nil {
		return emulation.MultiOptions{}, err
	}
	return emulation.MultiOptions{
		EnvCreator:    creator,
		Postprocessor: emulation.NewBasic,
		Teams:         s.opts.Teams,
		Validate:      s.opts.Validate,
		Logger:        log,
		SpaceSeed:     s.opts.SpaceSeed,
	}, nil
}

// ----------------------------------------------------------------------------
// Single agent
// ----------------------------------------------------------------------------

type singleSession struct {
	s *emulation.Single
}

func (ss *singleSession) spaces() Response {
	sp := spacesOf(ss.s.ObservationSpace(), ss.s.ActionSpace(), ss.s.FeatureSpace())
	return Response{Op: OpSpaces, ObsSpace: &sp.ObsSpace, ActNVec: sp.ActNVec, Fingerprint: sp.Fingerprint}
}

func (ss *singleSession) reset(seed *int64) (Response, error) {
	obs, err := ss.s.Reset(seed)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Op:         OpReset,
		StepResult: StepResult{Obs: obs.Data},
		Shape:      obs.Shape,
		DType:      obs.DType.String(),
	}, nil
}

func (ss *singleSession) step(req Request) (Response, error) {
	if req.Action == nil {
		return Response{}, errors.New("step: missing action")
	}
	obs, reward, done, info, err := ss.s.Step(actionArray(req.Action))
	if err != nil {
		return Response{}, err
	}
	return Response{
		Op:         OpStep,
		StepResult: StepResult{Obs: obs.Data, Reward: reward, Done: done, Info: info},
		Shape:      obs.Shape,
		DType:      obs.DType.String(),
	}, nil
}

func (ss *singleSession) close() error { return ss.s.Close() }

// ----------------------------------------------------------------------------
// Multi agent
// ----------------------------------------------------------------------------

type multiSession struct {
	m *emulation.Multi
}

func (ms *multiSession) spaces() Response {
	roster := ms.m.Roster()
	out := Response{Op: OpSpaces, Roster: roster, Spaces: make(map[string]Spaces, len(roster))}
	for _, id := range roster {
		// Roster ids always resolve.
		obs, _ := ms.m.ObservationSpace(id)
		act, _ := ms.m.ActionSpace(id)
		feat, _ := ms.m.FeatureSpace(id)
		out.Spaces[id] = spacesOf(obs, act, feat)
	}
	return out
}

func (ms *multiSession) reset(seed *int64) (Response, error) {
	obs, err := ms.m.Reset(seed)
	if err != nil {
		return Response{}, err
	}
	out := Response{Op: OpReset, Roster: ms.m.Roster(), Agents: make(map[string]StepResult, len(obs))}
	for id, o := range obs {
		out.Agents[id] = StepResult{Obs: o.Data}
	}
	return out, nil
}

func (ms *multiSession) step(req Request) (Response, error) {
	if len(req.Actions) == 0 {
		return Response{}, errors.New("step: missing actions")
	}
	actions := make(map[string]space.Array, len(req.Actions))
	for id, a := range req.Actions {
		actions[id] = actionArray(a)
	}

	obs, rewards, dones, infos, err := ms.m.Step(actions)
	if err != nil {
		return Response{}, err
	}
	out := Response{Op: OpStep, Roster: ms.m.Roster(), Agents: make(map[string]StepResult, len(obs))}
	for id, o := range obs {
		out.Agents[id] = StepResult{Obs: o.Data, Reward: rewards[id], Done: dones[id], Info: infos[id]}
	}
	out.Done = ms.m.Done()
	return out, nil
}

func (ms *multiSession) close() error { return ms.m.Close() }

func (s *Server) dispatch(sess session, req Request) Response {
	var (
		resp Response
		err  error
	)
	switch req.Op {
	case OpSpaces:
		resp = sess.spaces()
	case OpReset:
		resp, err = sess.reset(req.Seed)
	case OpStep:
		resp, err = sess.step(req)
	default:
		err = fmt.Errorf("unknown op %q", req.Op)
	}
	if err != nil {
		return Response{Op: req.Op, Error: err.Error()}
	}
	return resp
}
