package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"github.com/spf13/cobra"

	"pattoo-agent-setup/internal/environment"
	"pattoo-agent-setup/internal/installer"
	"pattoo-agent-setup/internal/logger"
	"pattoo-agent-setup/internal/preflight"
	"pattoo-agent-setup/internal/shell"
)

const description = "This program is the CLI interface to configuring the linux agent"

// Dependencies are the process-level inputs of a run. Zero fields are
// filled from the real OS by withDefaults; tests replace them.
type Dependencies struct {
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	Lookup     environment.LookupFunc
	Executable func() (string, error)
	Runner     shell.Runner
	Facts      func(runner shell.Runner, python string) (preflight.Facts, error)

	// Collaborators override the installation steps; nil ones are built
	// from the resolved environment.
	Config   installer.ConfigWriter
	Packages installer.PackageInstaller
	Units    installer.UnitInstaller
	Venv     installer.VenvPreparer
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	if d.Lookup == nil {
		d.Lookup = user.Lookup
	}
	if d.Executable == nil {
		d.Executable = executable
	}
	if d.Runner == nil {
		d.Runner = shell.Exec{}
	}
	if d.Facts == nil {
		d.Facts = preflight.Gather
	}
	return d
}

// executable returns the installer's own path with symlinks resolved.
func executable() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(path)
}

// options are the global flags shared by every subcommand.
type options struct {
	debug      bool
	configPath string
	root       string
}

// NewRootCommand builds the command tree for one run.
func NewRootCommand(deps Dependencies) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "pattoo-agent-setup",
		Short:         "Install the pattoo linux agent",
		Long:          description,
		SilenceUsage:  true,
		SilenceErrors: true,

		// PersistentPreRun is a hook that runs before any subcommand.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(opts.debug)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to installer settings file")
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", "", "Path to the pattoo-agent-linux checkout (defaults to the installer's parent directory)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err, ShowUsage: true}
	})

	rootCmd.SetOut(deps.Stderr)
	rootCmd.SetErr(deps.Stderr)

	rootCmd.AddCommand(newInstallCommand(deps, opts))
	return rootCmd
}

// Execute runs the installer with args (without the program name) and
// returns the process exit code.
func Execute(args []string, deps Dependencies) int {
	deps = deps.withDefaults()

	prevOut := logger.SetOutput(deps.Stdout)
	defer logger.SetOutput(prevOut)

	rootCmd := NewRootCommand(deps)

	// Install help if no arguments
	if len(args) == 0 {
		_ = rootCmd.Help()
		return ExitFailure
	}

	rootCmd.SetArgs(args)
	failed, err := rootCmd.ExecuteC()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Anything cobra rejects on its own is a parsing problem.
		exitErr = &ExitError{Code: ExitUsage, Err: err, ShowUsage: true}
	}

	fmt.Fprintf(deps.Stderr, "\nERROR: %v\n\n", exitErr.Err)
	if exitErr.ShowUsage && failed != nil {
		fmt.Fprint(deps.Stderr, failed.UsageString())
	}
	return exitErr.Code
}
