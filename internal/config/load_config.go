package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadContext captures PATTOO_CONFIGDIR through getenv, falling back to
// DefaultConfigDir. The process environment is never modified.
func LoadContext(getenv func(string) string) Context {
	dir := getenv(ConfigDirEnv)
	if dir == "" {
		dir = DefaultConfigDir
	}
	return Context{ConfigDir: dir}
}

// LoadSettings returns DefaultSettings overlaid with the YAML file at path.
// An empty path means no file; keys missing from the file keep their defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return settings, fmt.Errorf("failed to unmarshal settings %s: %w", path, err)
	}
	return settings, nil
}
