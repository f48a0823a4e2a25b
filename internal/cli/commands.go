package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"readerdesk/internal/config"
	"readerdesk/internal/infrastructure/errors"
	"readerdesk/internal/infrastructure/logging"
	"readerdesk/internal/server"
	"readerdesk/internal/window"
)

func newServeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the reader server and keep it running until interrupted",
		Long: `Start the bundled reader server with the stored configuration, wait for
it to become ready and keep it running until SIGINT or SIGTERM.

Server output is written to stderr and to the rotating log under <home>/logs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, e)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, e *env) error {
	dirs, err := e.dirs()
	if err != nil {
		return err
	}
	if err := dirs.Ensure(); err != nil {
		return err
	}

	logger, closer, err := logging.NewFileLogger(logging.DefaultFileOptions(dirs.Logs))
	if err != nil {
		return err
	}
	defer closer.Close()
	errors.SetDefaultRetryLogger(logger)

	cfg := config.NewManager(dirs.ConfigFile(), logger)
	supervisor := server.NewSupervisor(server.Options{
		Dirs:   dirs,
		Config: cfg,
		Java:   e.newChecker(logger),
		Logger: logger,
	})

	exited := make(chan struct{}, 1)
	supervisor.OnStateChange(func(st server.Status) {
		if st.State == server.StateIdle && !st.Running {
			select {
			case exited <- struct{}{}:
			default:
			}
		}
	})

	if err := supervisor.Start(ctx); err != nil {
		return fmt.Errorf("start server: %s", errors.UserMessage(err))
	}
	// Drop idle notifications emitted before readiness.
	select {
	case <-exited:
	default:
	}

	if err := printValue(cmd.OutOrStdout(), e.format, supervisor.Status()); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("Interrupted, stopping server")
	case <-exited:
		return fmt.Errorf("server exited unexpectedly")
	}
	return supervisor.Stop()
}

func newCheckJavaCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check-java [path]",
		Short: "Validate a Java executable, or find one on PATH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := e.newChecker(e.logger)
			ctx := cmd.Context()

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				found, err := checker.CheckInstalled(ctx)
				if err != nil {
					return fmt.Errorf("%s", errors.UserMessage(err))
				}
				path = found
			}

			version, err := checker.CheckVersion(ctx, path)
			if err != nil {
				return fmt.Errorf("%s", errors.UserMessage(err))
			}
			return printValue(cmd.OutOrStdout(), e.format, map[string]interface{}{
				"path":    path,
				"version": version.Raw,
			})
		},
	}
}

func newPortCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "port",
		Short: "Print the port the server listens on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(e)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.ServerPortOrDefault())
			return nil
		},
	}
}

func newURLCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "url",
		Short: "Print the URL the desktop window loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(e)
			if err != nil {
				return err
			}
			opts := window.URLOptions{Port: cfg.ServerPortOrDefault(), Debug: cfg.DebugEnabled()}
			if cfg.WindowURL != nil {
				opts.Override = *cfg.WindowURL
			}
			fmt.Fprintln(cmd.OutOrStdout(), window.BuildURL(opts, e.logger))
			return nil
		},
	}
}

func newConfigCommand(e *env) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the stored configuration",
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(e)
				if err != nil {
					return err
				}
				return printValue(cmd.OutOrStdout(), e.format, cfg)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := e.configManager()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), m.Path())
				return nil
			},
		},
	)
	return configCmd
}

func loadConfig(e *env) (*config.ReaderConfig, error) {
	m, err := e.configManager()
	if err != nil {
		return nil, err
	}
	cfg, err := m.Load()
	if err != nil {
		return nil, fmt.Errorf("%s", errors.UserMessage(err))
	}
	return cfg, nil
}
