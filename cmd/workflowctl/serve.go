package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"workflowbuilder/infrastructure/config"
	"workflowbuilder/infrastructure/di"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the editor API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServerAddress = addr
			}

			container, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer container.Logger.Sync()

			banner(cmd.OutOrStdout(), "serving on "+cfg.ServerAddress)
			return container.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SERVER_ADDRESS)")
	return cmd
}
