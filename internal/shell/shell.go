// Package shell runs the external programs the installer delegates to
// (python, pip, systemctl, chown).
package shell

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"pattoo-agent-setup/internal/logger"
)

// Runner executes external commands. Output captures combined stdout and
// stderr; Stream copies both to w while the command runs.
type Runner interface {
	Output(name string, args ...string) ([]byte, error)
	Stream(w io.Writer, name string, args ...string) error
}

// Exec is the Runner backed by os/exec.
type Exec struct{}

// Output runs the command to completion and returns its combined output.
func (Exec) Output(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s failed: %w", Join(name, args...), err)
	}
	return output, nil
}

// Stream runs the command with its stdout and stderr attached to w.
func (Exec) Stream(w io.Writer, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", Join(name, args...), err)
	}
	return nil
}

// Join renders a command line for log and error messages.
func Join(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
