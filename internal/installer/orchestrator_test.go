package installer

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pattoo-agent-setup/internal/config"
	"pattoo-agent-setup/internal/environment"
	"pattoo-agent-setup/internal/state"
)

// recorder collects the calls made to every fake collaborator in order.
type recorder struct {
	calls []string
	fail  map[string]error
}

func (r *recorder) hit(name string) error {
	r.calls = append(r.calls, name)
	return r.fail[name]
}

type fakeConfig struct {
	rec     *recorder
	daemons []string
	home    string
}

func (f *fakeConfig) Install(daemons []string, serviceHome string) error {
	f.daemons, f.home = daemons, serviceHome
	return f.rec.hit("configuration")
}

type fakePackages struct {
	rec      *recorder
	repoRoot string
	venvDir  string
	verbose  bool
}

func (f *fakePackages) Install(repoRoot, venvDir string, verbose bool) error {
	f.repoRoot, f.venvDir, f.verbose = repoRoot, venvDir, verbose
	return f.rec.hit("packages")
}

type fakeUnits struct {
	rec         *recorder
	templateDir string
	invocation  string
}

func (f *fakeUnits) Install(daemons []string, templateDir, invocation string) error {
	f.templateDir, f.invocation = templateDir, invocation
	return f.rec.hit("systemd")
}

type fakeVenv struct {
	rec   *recorder
	owner string
}

func (f *fakeVenv) Ensure(venvDir, owner string) error {
	f.owner = owner
	return f.rec.hit("venv")
}

type fixture struct {
	rec      *recorder
	config   *fakeConfig
	packages *fakePackages
	units    *fakeUnits
	venv     *fakeVenv
	out      *bytes.Buffer
	orch     *Orchestrator
}

func newFixture(env environment.Context) *fixture {
	rec := &recorder{fail: map[string]error{}}
	f := &fixture{
		rec:      rec,
		config:   &fakeConfig{rec: rec},
		packages: &fakePackages{rec: rec},
		units:    &fakeUnits{rec: rec},
		venv:     &fakeVenv{rec: rec},
		out:      &bytes.Buffer{},
	}
	f.orch = &Orchestrator{
		Env:      env,
		Daemons:  config.Daemons,
		Config:   f.config,
		Packages: f.packages,
		Units:    f.units,
		Venv:     f.venv,
		Out:      f.out,
	}
	return f
}

var testEnv = environment.Context{
	ServiceHome:            "/home/pattoo",
	VenvDir:                "/home/pattoo/pattoo-venv",
	InstallationInvocation: "/home/pattoo/pattoo-venv/bin/python3 /opt/pattoo-agent-linux",
	RepositoryRoot:         "/opt/pattoo-agent-linux",
	TemplateDir:            "/opt/pattoo-agent-linux/setup/systemd/system",
	ConfigDir:              "/etc/pattoo",
	Owner:                  "pattoo",
}

func TestRunStepOrder(t *testing.T) {
	tests := []struct {
		qualifier Qualifier
		want      []string
		banner    string
	}{
		{QualifierAll, []string{"configuration", "venv", "packages", "systemd"}, "Installing everything"},
		{QualifierConfiguration, []string{"configuration"}, "Installing configuration"},
		{QualifierPip, []string{"venv", "packages"}, "Installing pip packages"},
		{QualifierSystemd, []string{"systemd"}, "Installing and running system daemons"},
	}

	for _, tt := range tests {
		t.Run(string(tt.qualifier), func(t *testing.T) {
			f := newFixture(testEnv)

			require.NoError(t, f.orch.Run(Request{Qualifier: tt.qualifier}))

			assert.Equal(t, tt.want, f.rec.calls)
			assert.Equal(t, tt.banner+"\nDone\n", f.out.String())
		})
	}
}

func TestRunPassesContextToCollaborators(t *testing.T) {
	f := newFixture(testEnv)

	require.NoError(t, f.orch.Run(Request{Qualifier: QualifierAll, Verbose: true}))

	assert.Equal(t, config.Daemons, f.config.daemons)
	assert.Equal(t, "/home/pattoo", f.config.home)
	assert.Equal(t, "/opt/pattoo-agent-linux", f.packages.repoRoot)
	assert.Equal(t, "/home/pattoo/pattoo-venv", f.packages.venvDir)
	assert.True(t, f.packages.verbose)
	assert.Equal(t, "pattoo", f.venv.owner)
	assert.Equal(t, testEnv.TemplateDir, f.units.templateDir)
	assert.Equal(t, testEnv.InstallationInvocation, f.units.invocation)
}

func TestRunVerboseFlagPropagates(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		f := newFixture(testEnv)
		require.NoError(t, f.orch.Run(Request{Qualifier: QualifierPip, Verbose: verbose}))
		assert.Equal(t, verbose, f.packages.verbose)
	}
}

func TestRunCISkipsVenv(t *testing.T) {
	env := testEnv
	env.CI = true
	f := newFixture(env)

	require.NoError(t, f.orch.Run(Request{Qualifier: QualifierPip}))
	assert.Equal(t, []string{"packages"}, f.rec.calls)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	f := newFixture(testEnv)
	boom := errors.New("pip exploded")
	f.rec.fail["packages"] = boom

	err := f.orch.Run(Request{Qualifier: QualifierAll})

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "packages step failed")
	assert.Equal(t, []string{"configuration", "venv", "packages"}, f.rec.calls)
	assert.NotContains(t, f.out.String(), "Done")
}

func TestRunVenvFailureSkipsPackages(t *testing.T) {
	f := newFixture(testEnv)
	f.rec.fail["venv"] = errors.New("no python")

	require.Error(t, f.orch.Run(Request{Qualifier: QualifierPip}))
	assert.Equal(t, []string{"venv"}, f.rec.calls)
}

func TestRunUnknownQualifier(t *testing.T) {
	f := newFixture(testEnv)

	err := f.orch.Run(Request{Qualifier: "everything"})
	assert.ErrorContains(t, err, `unknown qualifier "everything"`)
	assert.Empty(t, f.rec.calls)
	assert.Empty(t, f.out.String())
}

func TestRunRecordsState(t *testing.T) {
	f := newFixture(testEnv)
	f.orch.StatePath = filepath.Join(t.TempDir(), state.FileName)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	f.orch.Now = func() time.Time { return at }
	f.rec.fail["systemd"] = errors.New("systemctl missing")

	require.Error(t, f.orch.Run(Request{Qualifier: QualifierAll}))

	st := state.LoadState(f.orch.StatePath)
	assert.Contains(t, st.Steps, "configuration")
	assert.Contains(t, st.Steps, "packages")
	assert.NotContains(t, st.Steps, "systemd", "failed steps are not recorded")
	assert.Equal(t, "all", st.Steps["packages"].Qualifier)
	assert.True(t, at.Equal(st.Steps["packages"].CompletedAt))
}
