// Package rollout drives emulated environments with a uniform random policy,
// one goroutine per environment, and reports finished episodes and
// transitions to optional sinks.
package rollout

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/envs"
	"github.com/alexunderch/PufferLib/internal/store"
	"github.com/alexunderch/PufferLib/internal/stream"
	"github.com/alexunderch/PufferLib/space"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Recorder stores finished episodes.
type Recorder interface {
	Record(ctx context.Context, ep store.Episode) (store.Episode, error)
}

// Publisher receives every transition.
type Publisher interface {
	Publish(ctx context.Context, tr stream.Transition) (string, error)
}

// Config selects what a Runner plays.
type Config struct {
	EnvName    string
	EnvOptions envs.Options
	Teams      emulation.Teams // multi-agent environments only
	Envs       int             // concurrent environments
	Episodes   int             // episodes per environment
	Seed       int64
	Validate   bool
}

// Summary aggregates a run.
type Summary struct {
	Episodes   int
	Steps      int
	MeanReturn float64
}

// Runner plays Config.Envs environments concurrently.
type Runner struct {
	cfg Config
	log *logrus.Entry
	rec Recorder
	pub Publisher

	mu      sync.Mutex
	summary Summary
	total   float64
}

// New returns a Runner. rec and pub may be nil.
func New(cfg Config, log *logrus.Entry, rec Recorder, pub Publisher) *Runner {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{cfg: cfg, log: log.WithField("env_name", cfg.EnvName), rec: rec, pub: pub}
}

// Run plays every environment to completion. The first error cancels the
// remaining environments.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.cfg.Envs < 1 || r.cfg.Episodes < 1 {
		return Summary{}, errors.New("rollout: need at least one environment and one episode")
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := range r.cfg.Envs {
		g.Go(func() error {
			seed := r.cfg.Seed + int64(i)
			rng := rand.New(rand.NewPCG(uint64(seed), uint64(i)))
			if envs.IsParallel(r.cfg.EnvName) {
				return r.runMulti(ctx, seed, rng)
			}
			return r.runSingle(ctx, seed, rng)
		})
	}
	err := g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.summary
	if s.Episodes > 0 {
		s.MeanReturn = r.total / float64(s.Episodes)
	}
	return s, err
}

func (r *Runner) runSingle(ctx context.Context, seed int64, rng *rand.Rand) error {
	creator, err := envs.SingleCreator(r.cfg.EnvName, r.cfg.EnvOptions)
	if err != nil {
		return err
	}
	s, err := emulation.NewSingle(emulation.SingleOptions{
		EnvCreator:    creator,
		Postprocessor: emulation.NewBasic,
		Validate:      r.cfg.Validate,
		Logger:        r.log,
		SpaceSeed:     seed,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	const agent = "agent"
	for ep := range r.cfg.Episodes {
		episode := uuid.New()
		epSeed := seed*int64(r.cfg.Episodes) + int64(ep)
		if _, err := s.Reset(&epSeed); err != nil {
			return err
		}
		for step := 0; !s.Done(); step++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			action := space.Sample(s.ActionSpace(), rng).(space.Array)
			obs, reward, done, info, err := s.Step(action)
			if err != nil {
				return err
			}
			r.addSteps(1)
			if err := r.publish(ctx, stream.Transition{
				Env: s.ID, Episode: episode, Agent: agent, Step: step,
				Obs: obs, Reward: reward, Done: done,
			}); err != nil {
				return err
			}
			if err := r.finish(ctx, s.ID, episode, agent, info); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runMulti(ctx context.Context, seed int64, rng *rand.Rand) error {
	creator, err := envs.ParallelCreator(r.cfg.EnvName, r.cfg.EnvOptions)
	if err != nil {
		return err
	}
	m, err := emulation.NewMulti(emulation.MultiOptions{
		EnvCreator:    creator,
		Postprocessor: emulation.NewBasic,
		Teams:         r.cfg.Teams,
		Validate:      r.cfg.Validate,
		Logger:        r.log,
		SpaceSeed:     seed,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	roster := m.Roster()
	for ep := range r.cfg.Episodes {
		episode := uuid.New()
		epSeed := seed*int64(r.cfg.Episodes) + int64(ep)
		if _, err := m.Reset(&epSeed); err != nil {
			return err
		}
		for step := 0; !m.Done(); step++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			actions := make(map[string]space.Array, len(roster))
			for _, id := range roster {
				nvec, err := m.ActionSpace(id)
				if err != nil {
					return err
				}
				actions[id] = space.Sample(nvec, rng).(space.Array)
			}
			obs, rewards, dones, infos, err := m.Step(actions)
			if err != nil {
				return err
			}
			r.addSteps(1)

			ids := make([]string, 0, len(infos))
			for id := range infos {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				if err := r.publish(ctx, stream.Transition{
					Env: m.ID, Episode: episode, Agent: id, Step: step,
					Obs: obs[id], Reward: rewards[id], Done: dones[id],
				}); err != nil {
					return err
				}
				if err := r.finish(ctx, m.ID, episode, id, infos[id]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *Runner) addSteps(n int) {
	r.mu.Lock()
	r.summary.Steps += n
	r.mu.Unlock()
}

func (r *Runner) publish(ctx context.Context, tr stream.Transition) error {
	if r.pub == nil {
		return nil
	}
	if _, err := r.pub.Publish(ctx, tr); err != nil {
		return fmt.Errorf("rollout: publish: %w", err)
	}
	return nil
}

// finish records an episode when info carries the totals written by
// emulation.Basic.
func (r *Runner) finish(ctx context.Context, envID, episode uuid.UUID, agent string, info emulation.Info) error {
	ret, ok := info["return"].(float64)
	if !ok {
		return nil
	}
	length, _ := info["length"].(int)

	r.mu.Lock()
	r.summary.Episodes++
	r.total += ret
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"env_id": envID,
		"agent":  agent,
		"return": ret,
		"length": length,
	}).Debug("Episode recorded")

	if r.rec == nil {
		return nil
	}
	_, err := r.rec.Record(ctx, store.Episode{
		ID:      uuid.NewSHA1(episode, []byte(agent)),
		EnvID:   envID,
		EnvName: r.cfg.EnvName,
		Agent:   agent,
		Return:  ret,
		Length:  length,
	})
	if err != nil {
		return fmt.Errorf("rollout: record: %w", err)
	}
	return nil
}
