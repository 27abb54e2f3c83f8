package main

import (
	"context"
	"fmt"
	"io"

	"github.com/alexunderch/PufferLib/internal/rollout"
	"github.com/alexunderch/PufferLib/internal/store"
	"github.com/alexunderch/PufferLib/internal/stream"
	"github.com/spf13/cobra"
)

func newRolloutCmd(a *app) *cobra.Command {
	var (
		envsN, episodes int
		record          bool
	)
	cmd := &cobra.Command{
		Use:   "rollout <env>",
		Short: "Play random-policy episodes and record them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("envs") {
				a.cfg.Envs = envsN
			}
			if cmd.Flags().Changed("episodes") {
				a.cfg.Episodes = episodes
			}
			return a.runRollout(cmd.Context(), cmd.OutOrStdout(), args[0], record)
		},
	}
	cmd.Flags().IntVar(&envsN, "envs", 0, "concurrent environments (default from PUFFER_ENVS)")
	cmd.Flags().IntVar(&episodes, "episodes", 0, "episodes per environment (default from PUFFER_EPISODES)")
	cmd.Flags().BoolVar(&record, "record", true, "store finished episodes in the configured database")
	return cmd
}

func (a *app) runRollout(ctx context.Context, w io.Writer, name string, record bool) error {
	if err := checkEnv(name); err != nil {
		return err
	}
	log := a.log.WithField("cmd", "rollout")

	var rec rollout.Recorder
	var db *store.Store
	if record {
		var err error
		if db, err = store.Open(ctx, a.cfg.DBDriver, a.cfg.DBDSN); err != nil {
			return err
		}
		defer db.Close()
		rec = db
	}

	var pub rollout.Publisher
	if a.cfg.RedisURL != "" {
		st, err := stream.Dial(ctx, a.cfg.RedisURL, stream.DefaultKey, 0)
		if err != nil {
			return err
		}
		defer st.Close()
		pub = st
		log = log.WithField("stream", st.Key())
	}

	r := rollout.New(rollout.Config{
		EnvName:    name,
		EnvOptions: a.envOpts,
		Teams:      a.teams,
		Envs:       a.cfg.Envs,
		Episodes:   a.cfg.Episodes,
		Seed:       a.cfg.Seed,
		Validate:   a.cfg.Validate,
	}, log, rec, pub)
	sum, err := r.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "episodes=%d steps=%d mean_return=%.4f\n", sum.Episodes, sum.Steps, sum.MeanReturn)

	if db != nil {
		recent, err := db.List(ctx, name, 5)
		if err != nil {
			return err
		}
		for _, ep := range recent {
			fmt.Fprintf(w, "  %s %-8s return=%.4f length=%d\n", ep.ID, ep.Agent, ep.Return, ep.Length)
		}
	}
	return nil
}
