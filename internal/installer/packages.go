package installer

import (
	"fmt"
	"io"
	"path/filepath"

	"pattoo-agent-setup/internal/logger"
	"pattoo-agent-setup/internal/shell"
)

// RequirementsFile is read from the repository root.
const RequirementsFile = "requirements.txt"

// PipInstaller installs requirements with pip. Regular runs use the
// interpreter inside the virtual environment; CI runs use pip3 with the
// venv directory as install target.
type PipInstaller struct {
	Runner shell.Runner
	CI     bool
	// Out receives command output in verbose mode.
	Out io.Writer
}

// Install installs every requirement of repoRoot into venvDir.
func (p PipInstaller) Install(repoRoot, venvDir string, verbose bool) error {
	reqs, err := readRequirements(filepath.Join(repoRoot, RequirementsFile))
	if err != nil {
		return err
	}

	for _, req := range reqs {
		name, args := p.command(req, venvDir)
		logger.Info("[INFO] Installing package %s\n", req)

		if verbose {
			if err := p.Runner.Stream(p.Out, name, args...); err != nil {
				return fmt.Errorf("failed to install %s: %w", req, err)
			}
			continue
		}

		if output, err := p.Runner.Output(name, args...); err != nil {
			logger.Error("[ERROR] pip failed for %s: %v\nOutput: %s\n", req, err, output)
			return fmt.Errorf("failed to install %s: %w", req, err)
		}
	}

	logger.Info("[INFO] Installed %d packages into %s\n", len(reqs), venvDir)
	return nil
}

func (p PipInstaller) command(req, venvDir string) (string, []string) {
	if p.CI {
		return "pip3", []string{"install", req, "-t", venvDir}
	}
	return filepath.Join(venvDir, "bin", "python3"), []string{"-m", "pip", "install", req}
}
