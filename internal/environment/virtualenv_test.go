package environment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pattoo-agent-setup/internal/shell"
)

func TestEnsureCreatesMissingVenv(t *testing.T) {
	venv := filepath.Join(t.TempDir(), "pattoo-venv")
	runner := &shell.Fake{}

	require.NoError(t, Virtualenv{Runner: runner, Python: "python3"}.Ensure(venv, "pattoo"))

	assert.Equal(t, []string{
		"python3 -m virtualenv " + venv,
		"chown -R pattoo:pattoo " + venv,
	}, runner.Calls)
}

func TestEnsureSkipsExistingVenv(t *testing.T) {
	venv := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(venv, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(venv, "bin", "python3"), nil, 0755))
	runner := &shell.Fake{}

	require.NoError(t, Virtualenv{Runner: runner, Python: "python3"}.Ensure(venv, ""))
	assert.Empty(t, runner.Calls)
}

func TestEnsureFailure(t *testing.T) {
	runner := &shell.Fake{Fail: map[string]error{"python3 -m virtualenv": errors.New("exit status 1")}}

	err := Virtualenv{Runner: runner, Python: "python3"}.Ensure(filepath.Join(t.TempDir(), "v"), "pattoo")
	assert.ErrorContains(t, err, "failed to create virtual environment")
	assert.Len(t, runner.Calls, 1, "no chown after a failed create")
}
