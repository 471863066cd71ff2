package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pattoo-agent-setup/internal/config"
	"pattoo-agent-setup/internal/environment"
	"pattoo-agent-setup/internal/installer"
	"pattoo-agent-setup/internal/logger"
	"pattoo-agent-setup/internal/preflight"
	"pattoo-agent-setup/internal/state"
)

// qualifier declares one `install <qualifier>` subcommand. The steps it
// runs live in installer.Plans under the same name.
type qualifier struct {
	name  installer.Qualifier
	short string
	flags func(fs *pflag.FlagSet, req *installer.Request)
}

// qualifiers is the complete `install` surface, in help order.
var qualifiers = []qualifier{
	{name: installer.QualifierAll, short: "Install all pattoo components", flags: bindVerbose},
	{name: installer.QualifierPip, short: "Install pip packages", flags: bindVerbose},
	{name: installer.QualifierConfiguration, short: "Configure the pattoo linux agent"},
	{name: installer.QualifierSystemd, short: "Install and run system daemons"},
}

func bindVerbose(fs *pflag.FlagSet, req *installer.Request) {
	fs.BoolVar(&req.Verbose, "verbose", false, "Enable verbose mode.")
}

// newInstallCommand builds `install` and one child per qualifier.
func newInstallCommand(deps Dependencies, opts *options) *cobra.Command {
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install pattoo.",
		// Qualifiers are children; anything else reaching here is wrong.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError(ExitFailure, "no qualifier given")
			}
			return usageError(ExitFailure, "unknown qualifier %q", args[0])
		},
	}

	for _, q := range qualifiers {
		req := &installer.Request{Qualifier: q.name}
		child := &cobra.Command{
			Use:   string(q.name),
			Short: q.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runInstall(deps, opts, *req)
			},
		}
		if q.flags != nil {
			q.flags(child.Flags(), req)
		}
		installCmd.AddCommand(child)
	}

	return installCmd
}

// runInstall checks preconditions, resolves the environment and hands the
// request to the orchestrator.
func runInstall(deps Dependencies, opts *options, req installer.Request) error {
	// Installer settings: defaults overlaid with --config
	settings, err := config.LoadSettings(opts.configPath)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	// Where the checkout is; wrong locations are usage errors
	repoRoot, err := repositoryRoot(deps, opts)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	// Preconditions: every violation is reported, then the run aborts
	facts, err := deps.Facts(deps.Runner, settings.Python)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	checks := preflight.Evaluate(facts, settings)
	if !checks.OK() {
		for _, v := range checks.Violations {
			logger.Error("[ERROR] %s\n", v.Message)
		}
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("installation preconditions not met: %w", checks.Err())}
	}
	if checks.NeedsVirtualenv {
		if err := preflight.InstallVirtualenv(deps.Runner); err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
	}

	// Paths for this host, then the steps of the chosen qualifier
	env, err := environment.Resolve(environment.Inputs{
		Invoker:        facts.Username,
		InvokerHome:    facts.Home,
		RepositoryRoot: repoRoot,
		Config:         config.LoadContext(deps.Getenv),
		Settings:       settings,
		Lookup:         deps.Lookup,
	})
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	orch := newOrchestrator(deps, settings, env)
	if err := orch.Run(req); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	return nil
}

// repositoryRoot returns --root when given, otherwise the checkout the
// installer binary lives in.
func repositoryRoot(deps Dependencies, opts *options) (string, error) {
	if opts.root != "" {
		return environment.CheckRoot(opts.root)
	}
	exe, err := deps.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate installer: %w", err)
	}
	return environment.LocateRepository(exe)
}

// newOrchestrator wires the real collaborators for env unless deps
// already supplies them.
func newOrchestrator(deps Dependencies, settings config.Settings, env environment.Context) *installer.Orchestrator {
	orch := &installer.Orchestrator{
		Env:       env,
		Daemons:   config.Daemons,
		Config:    deps.Config,
		Packages:  deps.Packages,
		Units:     deps.Units,
		Venv:      deps.Venv,
		Out:       deps.Stdout,
		StatePath: state.Path(env.ConfigDir),
	}

	if orch.Config == nil {
		orch.Config = installer.Configurator{
			ConfigDir: env.ConfigDir,
			Defaults:  settings.Agent,
			Owner:     env.Owner,
			Runner:    deps.Runner,
		}
	}
	if orch.Packages == nil {
		orch.Packages = installer.PipInstaller{Runner: deps.Runner, CI: env.CI, Out: logger.Writer()}
	}
	if orch.Units == nil {
		orch.Units = installer.UnitManager{
			Runner:     deps.Runner,
			SystemdDir: settings.SystemdDir,
			ConfigDir:  env.ConfigDir,
			User:       settings.ServiceAccount,
			Group:      settings.ServiceAccount,
		}
	}
	if orch.Venv == nil {
		orch.Venv = environment.Virtualenv{Runner: deps.Runner, Python: settings.Python}
	}
	return orch
}
