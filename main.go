package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gitpanel/internal/config"
	"gitpanel/internal/logging"
	"gitpanel/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "gitpanel-server",
		Short:        "HTTP server exposing git status, staging, commits and file history",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			// Initialize logger
			logger, err := logging.ForEnvironment(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer logger.Sync()

			srv, err := server.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("initializing server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Run(ctx); err != nil {
				logger.Error("server failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", config.Path(), "path to a JSON or YAML config file")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
