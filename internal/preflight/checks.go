// Package preflight decides whether this host and invocation may be
// installed on. Evaluate is pure; Gather collects the facts it needs.
package preflight

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"pattoo-agent-setup/internal/config"
	"pattoo-agent-setup/internal/logger"
	"pattoo-agent-setup/internal/shell"
)

// homeRoot is the directory installations must not be run from.
const homeRoot = "/home"

// ViolationKind classifies a failed precondition.
type ViolationKind string

const (
	// ViolationUser means the installer is not running as root.
	ViolationUser ViolationKind = "user"
	// ViolationDirectory means the checkout lives under /home.
	ViolationDirectory ViolationKind = "directory"
)

// Violation is a single failed precondition.
type Violation struct {
	Kind    ViolationKind
	Message string
}

func (v Violation) Error() string { return v.Message }

// Facts are the observations Evaluate works on.
type Facts struct {
	Username            string
	Home                string
	WorkingDir          string
	VirtualenvAvailable bool
}

// Result is the outcome of Evaluate. NeedsVirtualenv is not a violation:
// the caller installs the tool and carries on.
type Result struct {
	Violations      []Violation
	NeedsVirtualenv bool
}

// OK reports whether no precondition failed.
func (r Result) OK() bool { return len(r.Violations) == 0 }

// Err joins every violation into one error, or returns nil.
func (r Result) Err() error {
	var result *multierror.Error
	for _, v := range r.Violations {
		result = multierror.Append(result, v)
	}
	return result.ErrorOrNil()
}

// Evaluate checks facts against the installation preconditions. Runs by the
// CI account are exempt from every check.
func Evaluate(facts Facts, settings config.Settings) Result {
	var res Result
	if facts.Username == settings.CIAccount {
		return res
	}

	if facts.Username != "root" {
		res.Violations = append(res.Violations, Violation{
			Kind:    ViolationUser,
			Message: fmt.Sprintf("running as %q, run the installer as root to continue", facts.Username),
		})
	}

	if underHome(facts.WorkingDir) {
		res.Violations = append(res.Violations, Violation{
			Kind:    ViolationDirectory,
			Message: fmt.Sprintf("repository is cloned in home related directory %s, clone it in a non-home directory to continue", facts.WorkingDir),
		})
	}

	res.NeedsVirtualenv = !facts.VirtualenvAvailable
	return res
}

func underHome(dir string) bool {
	dir = filepath.Clean(dir)
	return dir == homeRoot || strings.HasPrefix(dir, homeRoot+string(filepath.Separator))
}

// Gather collects Facts from the running process. The virtualenv probe
// imports the module with python.
func Gather(runner shell.Runner, python string) (Facts, error) {
	current, err := user.Current()
	if err != nil {
		return Facts{}, fmt.Errorf("failed to get current user: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return Facts{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	_, probeErr := runner.Output(python, "-c", "import virtualenv")
	logger.Debug("[DEBUG] Preflight facts: user=%s cwd=%s virtualenv=%t\n", current.Username, wd, probeErr == nil)

	return Facts{
		Username:            current.Username,
		Home:                current.HomeDir,
		WorkingDir:          wd,
		VirtualenvAvailable: probeErr == nil,
	}, nil
}

// InstallVirtualenv installs the virtualenv module into the invoking user's
// site directory, which python3 imports from whatever its version.
func InstallVirtualenv(runner shell.Runner) error {
	logger.Warn("[WARN] virtualenv is not installed. Installing virtualenv\n")
	if output, err := runner.Output("pip3", "install", "--user", "virtualenv"); err != nil {
		logger.Error("[ERROR] pip3 install virtualenv failed: %v\nOutput: %s\n", err, output)
		return fmt.Errorf("failed to install virtualenv: %w", err)
	}
	return nil
}
