package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"os"            // For file system operations like reading and writing files
	"path/filepath"
	"time"

	"pattoo-agent-setup/internal/logger"
)

// FileName is the state file kept in the agent configuration directory.
const FileName = ".install_state.json"

// StepState records the last successful run of one installation step.
type StepState struct {
	CompletedAt time.Time `json:"completed_at"` // When the step last returned without error
	Qualifier   string    `json:"qualifier"`    // The qualifier that ran it (all, pip, ...)
}

// State holds the installation history keyed by step name.
type State struct {
	Steps map[string]StepState `json:"steps"`
}

// Path returns the state file location inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, FileName)
}

// Record marks step as completed by qualifier at the given time.
func (s *State) Record(step, qualifier string, at time.Time) {
	s.Steps[step] = StepState{CompletedAt: at.UTC(), Qualifier: qualifier}
}

// LoadState loads the saved state from a JSON file at the given path.
// A missing or unreadable file yields an empty State with a non-nil map.
func LoadState(path string) *State {
	// Read entire state JSON file into memory
	file, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("[DEBUG] No state at %s: %v\n", path, err)
		return &State{Steps: make(map[string]StepState)}
	}

	// Decode; a corrupt file still yields a usable empty state
	var st State
	if err := json.Unmarshal(file, &st); err != nil {
		logger.Warn("[WARN] Ignoring corrupt state file %s: %v\n", path, err)
	}
	// Ensure Record never writes to a nil map
	if st.Steps == nil {
		st.Steps = make(map[string]StepState)
	}
	return &st
}

// SaveState writes st to path as indented JSON, creating the parent
// directory when needed. Errors are logged but not propagated.
func SaveState(path string, st *State) {
	// Convert state struct into pretty-printed JSON
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal state: %v\n", err)
		return
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	// The config directory may not exist before the first configuration step
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("[ERROR] Failed to create state directory for %s: %v\n", path, err)
		return
	}
	// Write JSON to disk with permission 0644
	if err := os.WriteFile(path, file, 0644); err != nil {
		logger.Error("[ERROR] Failed to write state file %s: %v\n", path, err)
	}
}
