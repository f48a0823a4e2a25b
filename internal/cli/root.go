// Package cli implements readerctl, the headless companion of the desktop shell.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"readerdesk/internal/config"
	"readerdesk/internal/infrastructure/logging"
	"readerdesk/internal/java"
	"readerdesk/internal/paths"
)

// env carries what subcommands share
type env struct {
	home   string
	jar    string
	format string

	newChecker func(logger logging.Logger) *java.Checker
	logger     logging.Logger
}

func (e *env) dirs() (paths.Dirs, error) {
	dirs, err := paths.Resolve()
	if err != nil {
		return paths.Dirs{}, err
	}
	if e.home != "" {
		dirs = paths.FromHome(e.home, dirs.Jar)
	}
	if e.jar != "" {
		dirs.Jar = e.jar
	}
	return dirs, nil
}

func (e *env) configManager() (*config.Manager, error) {
	dirs, err := e.dirs()
	if err != nil {
		return nil, err
	}
	return config.NewManager(dirs.ConfigFile(), e.logger), nil
}

// NewRootCommand builds the readerctl command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(&env{newChecker: java.NewChecker})
}

func newRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "readerctl",
		Short:         "Run and inspect the reader server without the desktop window",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&e.home, "home", "", "App home directory (default: $"+paths.EnvHome+" or the user config dir)")
	root.PersistentFlags().StringVar(&e.jar, "jar", "", "Server jar (default: $"+paths.EnvJar+" or the bundled jar)")
	root.PersistentFlags().StringVar(&e.format, "format", "yaml", "Output format: yaml, json")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch e.format {
		case "yaml", "json":
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", e.format)
		}
		if e.logger == nil {
			e.logger = logging.NewWriterLogger(cmd.ErrOrStderr())
		}
		return nil
	}

	root.AddCommand(
		newServeCommand(e),
		newCheckJavaCommand(e),
		newPortCommand(e),
		newURLCommand(e),
		newConfigCommand(e),
	)
	return root
}

// Execute runs readerctl with args and returns the process exit code
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}
