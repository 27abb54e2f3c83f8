// Command puffer runs the reference environments through the emulation
// layer.
package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/envs"
	"github.com/alexunderch/PufferLib/internal/config"
	"github.com/alexunderch/PufferLib/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by subcommands once flags are parsed.
type app struct {
	envFile string
	cfg     config.Config
	log     *logrus.Logger
	envOpts envs.Options
	teams   emulation.Teams
}

func newRootCmd() *cobra.Command {
	a := &app{envOpts: envs.DefaultOptions()}
	root := &cobra.Command{
		Use:           "puffer",
		Short:         "Flatten structured environments into fixed-size vectors",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.envFile, "env-file", ".env", "dotenv file read before the environment")
	f.Bool("validate", false, "check every observation and action against its space")
	f.Int64("seed", 0, "base seed")
	f.String("teams", "", "YAML team layout for multi-agent environments")
	f.IntVar(&a.envOpts.Size, "size", a.envOpts.Size, "grid size")
	f.IntVar(&a.envOpts.MaxSteps, "max-steps", a.envOpts.MaxSteps, "episode step limit")
	f.IntVar(&a.envOpts.Agents, "agents", a.envOpts.Agents, "agents in multi-agent environments")
	f.IntVar(&a.envOpts.MaxHP, "max-hp", a.envOpts.MaxHP, "starting hit points in the arena")

	root.AddCommand(newSpacesCmd(a), newRolloutCmd(a), newServeCmd(a), newTokenCmd(a))
	return root
}

// load reads configuration, applies explicit flags over it and builds the
// logger and team layout.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("validate") {
		cfg.Validate, _ = flags.GetBool("validate")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("teams") {
		cfg.TeamsFile, _ = flags.GetString("teams")
	}
	a.cfg = cfg

	if a.log, err = logging.New(cfg.LogLevel, cfg.LogJSON); err != nil {
		return err
	}
	a.log.SetOutput(cmd.ErrOrStderr())

	if cfg.TeamsFile != "" {
		if a.teams, err = config.LoadTeams(cfg.TeamsFile); err != nil {
			return err
		}
	}
	return nil
}

func checkEnv(name string) error {
	names := envs.Names()
	if slices.Contains(names, name) {
		return nil
	}
	return fmt.Errorf("unknown environment %q (want one of %s)", name, strings.Join(names, ", "))
}
