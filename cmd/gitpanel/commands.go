// cmd/gitpanel/commands.go
package main

import (
	"fmt"
	"io"
	"net"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gitpanel/internal/logging"
	"gitpanel/internal/server"
	"gitpanel/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show changed, staged and untracked files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.Status(a.opts.repo)
			if err != nil {
				return fmt.Errorf("getting status: %w", err)
			}
			return a.render(cmd.OutOrStdout(), resp, func(w io.Writer) { printStatus(w, resp) })
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Stage every untracked, modified, type-changed and renamed file",
		Long: `Stage every untracked, modified, type-changed and renamed file.
Deleted files are left as they are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.Add(a.opts.repo)
			if err != nil {
				return fmt.Errorf("staging changes: %w", err)
			}
			return a.render(cmd.OutOrStdout(), resp, func(w io.Writer) { printAdd(w, resp) })
		},
	}
}

func newCommitCmd(a *app) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the staged changes as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.Commit(a.opts.repo, message)
			if err != nil {
				return fmt.Errorf("committing: %w", err)
			}
			return a.render(cmd.OutOrStdout(), resp, func(w io.Writer) { printCommit(w, resp) })
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.MarkFlagRequired("message")
	return cmd
}

func newCommitChangesCmd(a *app) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "commit-changes",
		Short: "Stage everything and commit it in one step",
		Long: `Stage everything and commit it in one step.
If staging succeeds but the commit fails, the staged changes stay staged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.CommitChanges(a.opts.repo, message)
			if err != nil {
				return fmt.Errorf("committing changes: %w", err)
			}
			return a.render(cmd.OutOrStdout(), resp, func(w io.Writer) { printCommit(w, resp) })
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.MarkFlagRequired("message")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <file>",
		Short: "List the commits that changed a file",
		Long: `List up to 100 commits that changed a file, newest first.
The path is relative to the repository root, or absolute. Only the first
parent of a merge is compared, and the root commit is always listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.History(a.opts.repo, args[0])
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}
			return a.render(cmd.OutOrStdout(), resp, func(w io.Writer) { printHistory(w, resp) })
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the status again whenever the work tree changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			refresh := func() {
				resp, err := svc.Status(a.opts.repo)
				if err != nil {
					a.logger.Error("refreshing status", zap.Error(err))
					return
				}
				fmt.Fprintf(out, "%s\n", faint(time.Now().Format("15:04:05")))
				if err := a.render(out, resp, func(w io.Writer) { printStatus(w, resp) }); err != nil {
					a.logger.Error("printing status", zap.Error(err))
				}
			}

			debounce := time.Duration(a.cfg.Watch.DebounceMS) * time.Millisecond
			w, err := watch.New(a.opts.repo, debounce, refresh, a.logger.Named("watch"))
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			refresh()
			return w.Run(ctx)
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if addr != "" {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return fmt.Errorf("parsing --addr: %w", err)
				}
				p, err := strconv.Atoi(port)
				if err != nil {
					return fmt.Errorf("parsing --addr port: %w", err)
				}
				cfg.Server.Host, cfg.Server.Port = host, p
			}

			logger, err := logging.ForEnvironment(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer logger.Sync()

			srv, err := server.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("initializing server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address as host:port (overrides the config)")
	return cmd
}
