package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexunderch/PufferLib/internal/server"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a bearer token for the websocket server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWTSecret == "" {
				return errors.New("PUFFER_JWT_SECRET is not set")
			}
			tok, err := server.IssueToken([]byte(a.cfg.JWTSecret), args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
