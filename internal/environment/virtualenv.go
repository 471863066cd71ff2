package environment

import (
	"fmt"
	"os"
	"path/filepath"

	"pattoo-agent-setup/internal/logger"
	"pattoo-agent-setup/internal/shell"
)

// Virtualenv creates the agent's virtual environment.
type Virtualenv struct {
	Runner shell.Runner
	Python string
}

// Ensure creates a virtual environment at venvDir unless its interpreter is
// already there, then hands the tree to owner when owner is not empty.
func (v Virtualenv) Ensure(venvDir, owner string) error {
	interpreter := filepath.Join(venvDir, "bin", "python3")
	if _, err := os.Stat(interpreter); err == nil {
		logger.Info("[INFO] Virtual environment %s already exists. Skipping.\n", venvDir)
	} else {
		logger.Info("[INFO] Creating virtual environment %s\n", venvDir)
		if output, err := v.Runner.Output(v.Python, "-m", "virtualenv", venvDir); err != nil {
			logger.Error("[ERROR] virtualenv failed: %v\nOutput: %s\n", err, output)
			return fmt.Errorf("failed to create virtual environment %s: %w", venvDir, err)
		}
	}

	if owner == "" {
		return nil
	}
	return Chown(v.Runner, owner, venvDir)
}

// Chown recursively assigns path to owner and its primary group of the same name.
func Chown(runner shell.Runner, owner, path string) error {
	if output, err := runner.Output("chown", "-R", owner+":"+owner, path); err != nil {
		logger.Error("[ERROR] chown failed: %v\nOutput: %s\n", err, output)
		return fmt.Errorf("failed to chown %s to %s: %w", path, owner, err)
	}
	return nil
}
