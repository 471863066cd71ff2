package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pattoo-agent-setup/internal/config"
	"pattoo-agent-setup/internal/environment"
	"pattoo-agent-setup/internal/logger"
	"pattoo-agent-setup/internal/shell"
)

// Configurator writes pattoo.yaml and pattoo_agent.yaml into ConfigDir and
// creates the directories they reference. Existing files keep their values;
// only missing keys are added.
type Configurator struct {
	ConfigDir string
	Defaults  config.AgentDefaults
	// Owner receives the created directories; empty skips chown.
	Owner  string
	Runner shell.Runner
}

// Install writes the configuration for daemons and prepares serviceHome.
func (c Configurator) Install(daemons []string, serviceHome string) error {
	logger.Info("[INFO] Writing configuration to %s\n", c.ConfigDir)

	if err := os.MkdirAll(c.ConfigDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", c.ConfigDir, err)
	}

	documents := []struct {
		name     string
		defaults map[string]any
	}{
		{config.ServerConfigFile, c.Defaults.ServerDocument()},
		{config.AgentConfigFile, c.Defaults.AgentDocument(daemons)},
	}
	for _, doc := range documents {
		if err := mergeDocument(filepath.Join(c.ConfigDir, doc.name), doc.defaults); err != nil {
			return err
		}
	}

	dirs := append(c.Defaults.Directories(), serviceHome)
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("[DEBUG] Ensured directory %s\n", dir)
		if c.Owner == "" {
			continue
		}
		if err := environment.Chown(c.Runner, c.Owner, dir); err != nil {
			return err
		}
	}
	return nil
}

// mergeDocument fills path with defaults, preserving whatever an existing
// file already sets. Unchanged files are not rewritten.
func mergeDocument(path string, defaults map[string]any) error {
	doc := map[string]any{}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !config.FillMissing(doc, defaults) {
		logger.Info("[INFO] %s is already configured. Skipping.\n", path)
		return nil
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := writeFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("[INFO] Wrote %s\n", path)
	return nil
}
