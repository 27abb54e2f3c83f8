package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alexunderch/PufferLib/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve <env>",
		Short: "Serve an environment over websockets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkEnv(args[0]); err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			log := a.log.WithFields(logrus.Fields{"cmd": "serve"})
			if a.cfg.JWTSecret == "" {
				log.Warn("PUFFER_JWT_SECRET is empty; connections are not authenticated")
			}
			srv, err := server.New(server.Options{
				EnvName:    args[0],
				EnvOptions: a.envOpts,
				Teams:      a.teams,
				Validate:   a.cfg.Validate,
				SpaceSeed:  a.cfg.Seed,
				Secret:     []byte(a.cfg.JWTSecret),
				Logger:     log,
			})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, a.cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from PUFFER_ADDR)")
	return cmd
}
