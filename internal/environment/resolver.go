// Package environment resolves where the agent lives on this host: the
// service account's home, the virtual environment, and the paths derived
// from the repository checkout.
package environment

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"pattoo-agent-setup/internal/config"
	"pattoo-agent-setup/internal/logger"
)

// nonexistentHome is the placeholder home some distributions assign to
// system accounts.
const nonexistentHome = "/nonexistent"

// expectedSetupDir is the directory the installer binary must live in,
// relative to the checkout.
var expectedSetupDir = filepath.Join("pattoo-agent-linux", "setup")

// ErrUnexpectedLocation reports an installer started outside <checkout>/setup.
var ErrUnexpectedLocation = errors.New("installer is not located in the expected directory")

// LookupFunc finds an OS user by name. user.Lookup satisfies it.
type LookupFunc func(name string) (*user.User, error)

// Context holds every path the installation steps need. It is built once
// by Resolve and only read afterwards.
type Context struct {
	ServiceHome            string
	VenvDir                string
	InstallationInvocation string
	RepositoryRoot         string
	TemplateDir            string
	ConfigDir              string
	// Owner is the service account when it exists on the host, otherwise
	// empty and nothing is chowned.
	Owner string
	// CI is set when the invoking user is the CI account.
	CI bool
}

// Inputs are the facts Resolve derives the Context from.
type Inputs struct {
	Invoker        string
	InvokerHome    string
	RepositoryRoot string
	Config         config.Context
	Settings       config.Settings
	Lookup         LookupFunc
}

// Resolve builds the Context for this run.
func Resolve(in Inputs) (Context, error) {
	ctx := Context{
		RepositoryRoot: in.RepositoryRoot,
		TemplateDir:    filepath.Join(in.RepositoryRoot, "setup", "systemd", "system"),
		ConfigDir:      in.Config.ConfigDir,
	}

	if in.Invoker == in.Settings.CIAccount {
		ctx.CI = true
		ctx.ServiceHome = filepath.Join(in.InvokerHome, "pattoo")
		ctx.VenvDir = UserSitePackages(in.InvokerHome)
		ctx.InstallationInvocation = in.RepositoryRoot
		logger.Debug("[DEBUG] CI run detected, using %s\n", ctx.VenvDir)
		return ctx, nil
	}

	home, exists, err := ServiceHome(in.Lookup, in.Settings)
	if err != nil {
		return Context{}, err
	}
	if exists {
		ctx.Owner = in.Settings.ServiceAccount
	}
	ctx.ServiceHome = home
	ctx.VenvDir = filepath.Join(home, "pattoo-venv")
	ctx.InstallationInvocation = fmt.Sprintf("%s %s", filepath.Join(ctx.VenvDir, "bin", "python3"), in.RepositoryRoot)

	logger.Debug("[DEBUG] Resolved service home %s, venv %s\n", ctx.ServiceHome, ctx.VenvDir)
	return ctx, nil
}

// ServiceHome returns the home directory of the service account and whether
// the account exists. A missing account, or one whose home is the
// /nonexistent placeholder, yields Settings.DefaultHome.
func ServiceHome(lookup LookupFunc, settings config.Settings) (string, bool, error) {
	u, err := lookup(settings.ServiceAccount)
	if err != nil {
		var unknown user.UnknownUserError
		if errors.As(err, &unknown) {
			logger.Debug("[DEBUG] User %s not found, using %s\n", settings.ServiceAccount, settings.DefaultHome)
			return settings.DefaultHome, false, nil
		}
		return "", false, fmt.Errorf("failed to look up user %s: %w", settings.ServiceAccount, err)
	}

	if u.HomeDir == "" || u.HomeDir == nonexistentHome {
		return settings.DefaultHome, true, nil
	}
	return u.HomeDir, true, nil
}

// UserSitePackages is the per-user pip target directory. CI runs install
// packages there instead of into a virtual environment.
func UserSitePackages(home string) string {
	return filepath.Join(home, ".local", "lib", "python3.6", "site-packages")
}

// LocateRepository derives the checkout root from the installer's path.
// The binary must sit in <checkout>/setup where <checkout> is named
// pattoo-agent-linux.
func LocateRepository(executable string) (string, error) {
	dir := filepath.Dir(filepath.Clean(executable))
	if !strings.HasSuffix(dir, string(filepath.Separator)+expectedSetupDir) {
		return "", fmt.Errorf("%w: %s is not in the %q directory", ErrUnexpectedLocation, executable, expectedSetupDir)
	}
	return filepath.Dir(dir), nil
}

// CheckRoot validates a checkout given explicitly with --root: it must
// contain a setup directory. The absolute path is returned.
func CheckRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	// Unit templates live under setup/
	info, err := os.Stat(filepath.Join(abs, "setup"))
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s has no setup directory", ErrUnexpectedLocation, abs)
	}
	return abs, nil
}
