// cmd/gitpanel/root.go
package main

import (
	"fmt"
	"path/filepath"

	"gitpanel/client"
	"gitpanel/internal/api"
	"gitpanel/internal/config"
	"gitpanel/internal/logging"
	"gitpanel/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	repo       string
	jsonOutput bool
	serverURL  string
	configPath string
	verbose    bool
}

// app is the state shared by subcommands once flags are parsed.
type app struct {
	opts    *options
	cfg     *config.Config
	logger  *logging.Logger
	backend api.Service
	close   func() error
}

func newRootCmd() (*cobra.Command, *app) {
	opts := &options{}
	a := &app{opts: opts}

	rootCmd := &cobra.Command{
		Use:   "gitpanel",
		Short: "Inspect and change a local git repository",
		Long: `gitpanel reports working tree status, stages changes, creates commits and
shows the commit history of a single file. Commands run against the repository
directly, or against a running gitpanel server with --server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.repo, "repo", "C", ".", "path to the repository work tree")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print the raw response envelope")
	flags.StringVar(&opts.serverURL, "server", "", "base URL of a gitpanel server to use instead of local access")
	flags.StringVar(&opts.configPath, "config", config.Path(), "path to a JSON or YAML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level to stderr")

	rootCmd.AddCommand(
		newStatusCmd(a),
		newAddCmd(a),
		newCommitCmd(a),
		newCommitChangesCmd(a),
		newHistoryCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
	)
	return rootCmd, a
}

func (a *app) setup() error {
	cfg, err := config.LoadOrDefault(a.opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.opts.verbose {
		level = "debug"
	}
	logger, err := logging.NewConsole(level)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.logger = logger

	repo, err := filepath.Abs(a.opts.repo)
	if err != nil {
		return fmt.Errorf("resolving repository path: %w", err)
	}
	a.opts.repo = repo
	return nil
}

// service returns the backend commands talk to, built on first use.
func (a *app) service() (api.Service, error) {
	if a.backend != nil {
		return a.backend, nil
	}

	if a.opts.serverURL != "" {
		a.backend = client.New(a.opts.serverURL)
		return a.backend, nil
	}

	svc, closer, err := server.NewService(a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("initializing service: %w", err)
	}
	a.backend = svc
	a.close = closer
	return a.backend, nil
}

// shutdown releases whatever service() opened.
func (a *app) shutdown() {
	if a.close != nil {
		if err := a.close(); err != nil && a.logger != nil {
			a.logger.Warn("closing service", zap.Error(err))
		}
		a.close = nil
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}
