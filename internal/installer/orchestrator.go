package installer

import (
	"fmt"
	"io"
	"time"

	"pattoo-agent-setup/internal/environment"
	"pattoo-agent-setup/internal/logger"
	"pattoo-agent-setup/internal/state"
)

// ConfigWriter writes the agent configuration for daemons under serviceHome.
type ConfigWriter interface {
	Install(daemons []string, serviceHome string) error
}

// PackageInstaller installs the checkout's python requirements into venvDir.
type PackageInstaller interface {
	Install(repoRoot, venvDir string, verbose bool) error
}

// UnitInstaller installs, enables and starts one systemd unit per daemon.
type UnitInstaller interface {
	Install(daemons []string, templateDir, invocation string) error
}

// VenvPreparer makes sure venvDir is a usable virtual environment.
type VenvPreparer interface {
	Ensure(venvDir, owner string) error
}

// Qualifier selects which installation steps run.
type Qualifier string

const (
	QualifierAll           Qualifier = "all"
	QualifierPip           Qualifier = "pip"
	QualifierConfiguration Qualifier = "configuration"
	QualifierSystemd       Qualifier = "systemd"
)

// Step is one unit of installation work.
type Step string

const (
	StepConfiguration Step = "configuration"
	StepPackages      Step = "packages"
	StepSystemd       Step = "systemd"
)

// Plan is what a qualifier announces and runs.
type Plan struct {
	Banner string
	Steps  []Step
}

// Plans maps every qualifier to its ordered steps.
var Plans = map[Qualifier]Plan{
	QualifierAll: {
		Banner: "Installing everything",
		Steps:  []Step{StepConfiguration, StepPackages, StepSystemd},
	},
	QualifierConfiguration: {
		Banner: "Installing configuration",
		Steps:  []Step{StepConfiguration},
	},
	QualifierPip: {
		Banner: "Installing pip packages",
		Steps:  []Step{StepPackages},
	},
	QualifierSystemd: {
		Banner: "Installing and running system daemons",
		Steps:  []Step{StepSystemd},
	},
}

// Request is a parsed `install <qualifier>` invocation.
type Request struct {
	Qualifier Qualifier
	Verbose   bool
}

// Orchestrator runs the steps of a Plan against its collaborators.
type Orchestrator struct {
	Env      environment.Context
	Daemons  []string
	Config   ConfigWriter
	Packages PackageInstaller
	Units    UnitInstaller
	Venv     VenvPreparer
	Out      io.Writer

	// StatePath is where completed steps are recorded; empty disables it.
	StatePath string
	Now       func() time.Time
}

// Run executes every step of the request's plan in order and prints Done.
// The first failing step aborts the run; nothing already done is undone.
func (o *Orchestrator) Run(req Request) error {
	// Look up the steps for this qualifier
	plan, ok := Plans[req.Qualifier]
	if !ok {
		return fmt.Errorf("unknown qualifier %q", req.Qualifier)
	}

	fmt.Fprintln(o.Out, plan.Banner)

	// Load earlier install history, if recording is enabled
	var st *state.State
	if o.StatePath != "" {
		st = state.LoadState(o.StatePath)
	}

	// Run each step in order; stop at the first failure
	for _, step := range plan.Steps {
		logger.Debug("[DEBUG] Running step %s\n", step)
		if err := o.runStep(step, req); err != nil {
			logger.Error("[ERROR] Step %s failed: %v\n", step, err)
			return fmt.Errorf("%s step failed: %w", step, err)
		}
		// Record the completed step
		if st != nil {
			st.Record(string(step), string(req.Qualifier), o.now())
			state.SaveState(o.StatePath, st)
		}
	}

	// Every step succeeded
	fmt.Fprintln(o.Out, "Done")
	return nil
}

func (o *Orchestrator) runStep(step Step, req Request) error {
	switch step {
	case StepConfiguration:
		return o.Config.Install(o.Daemons, o.Env.ServiceHome)
	case StepPackages:
		// CI installs straight into the user site directory, no venv needed
		if !o.Env.CI {
			if err := o.Venv.Ensure(o.Env.VenvDir, o.Env.Owner); err != nil {
				return err
			}
		}
		return o.Packages.Install(o.Env.RepositoryRoot, o.Env.VenvDir, req.Verbose)
	case StepSystemd:
		return o.Units.Install(o.Daemons, o.Env.TemplateDir, o.Env.InstallationInvocation)
	default:
		return fmt.Errorf("unknown step %q", step)
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
