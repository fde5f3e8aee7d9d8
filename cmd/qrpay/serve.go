package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/qrpay/internal/api"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := api.NewServer(api.Deps{
				Scanner:  a.orch,
				Profiles: a.profiles,
				Sessions: a.sessions,
				History:  a.store,
				Logger:   a.logger,
			})

			slog.Info("starting API server", "addr", addr, "db", a.store.Path())
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")

	return cmd
}
