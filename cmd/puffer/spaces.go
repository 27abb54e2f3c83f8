package main

import (
	"fmt"
	"io"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/envs"
	"github.com/alexunderch/PufferLib/space"
	"github.com/spf13/cobra"
)

func newSpacesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "spaces <env>",
		Short: "Print the structured and flat spaces of an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSpaces(cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) runSpaces(w io.Writer, name string) error {
	if err := checkEnv(name); err != nil {
		return err
	}
	log := a.log.WithField("cmd", "spaces")

	if !envs.IsParallel(name) {
		creator, err := envs.SingleCreator(name, a.envOpts)
		if err != nil {
			return err
		}
		s, err := emulation.NewSingle(emulation.SingleOptions{EnvCreator: creator, Logger: log, SpaceSeed: a.cfg.Seed})
		if err != nil {
			return err
		}
		defer s.Close()
		printSpaces(w, name, s.StructuredObservationSpace(), s.FeatureSpace(), s.StructuredActionSpace(), s.ObservationSpace(), s.ActionSpace())
		return nil
	}

	creator, err := envs.ParallelCreator(name, a.envOpts)
	if err != nil {
		return err
	}
	m, err := emulation.NewMulti(emulation.MultiOptions{EnvCreator: creator, Teams: a.teams, Logger: log, SpaceSeed: a.cfg.Seed})
	if err != nil {
		return err
	}
	defer m.Close()
	for _, id := range m.Roster() {
		obs, _ := m.ObservationSpace(id)
		act, _ := m.ActionSpace(id)
		feat, _ := m.FeatureSpace(id)
		structuredObs, _ := m.StructuredObservationSpace(id)
		structuredAct, _ := m.StructuredActionSpace(id)
		printSpaces(w, id, structuredObs, feat, structuredAct, obs, act)
	}
	return nil
}

func printSpaces(w io.Writer, id string, obs, features, act space.Space, box *space.Box, nvec *space.MultiDiscrete) {
	fmt.Fprintf(w, "%s\n", id)
	fmt.Fprintf(w, "  observation: %s\n", obs)
	fmt.Fprintf(w, "  features:    %s\n", features)
	fmt.Fprintf(w, "  action:      %s\n", act)
	fmt.Fprintf(w, "  flat obs:    %s\n", box)
	fmt.Fprintf(w, "  flat action: %s\n", nvec)
	fmt.Fprintf(w, "  fingerprint: %s\n", space.Fingerprint(space.FlattenSpace(features)))
}
