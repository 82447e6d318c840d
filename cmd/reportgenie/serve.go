package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sant0-9/reportgenie/internal/pipeline"
	"github.com/sant0-9/reportgenie/internal/server"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web interface",
		Long: `Starts the browser interface and JSON API.

Examples:
  reportgenie serve                  # listen on the configured address
  reportgenie serve --addr :9000     # listen on port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			logger, closeLog, err := newLogger(cfg, "")
			if err != nil {
				return err
			}
			defer closeLog()

			p, err := pipeline.FromConfig(cfg, logger)
			if err != nil {
				return err
			}

			srv := server.New(p, logger, server.Options{
				Provider:    cfg.Provider,
				Model:       cfg.Model,
				RateLimit:   cfg.RateLimit,
				CORSOrigins: origins,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed CORS origins (default any)")

	return cmd
}
