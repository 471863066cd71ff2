package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pattoo-agent-setup/internal/logger"
	"pattoo-agent-setup/internal/shell"
)

// Placeholders substituted in unit templates.
const (
	placeholderInstallation = "INSTALLATION_DIRECTORY"
	placeholderUser         = "PATTOO_USER"
	placeholderGroup        = "PATTOO_GROUP"
)

// configDirEnv marks the template line that passes the config directory to
// the daemon. The whole line is rewritten, not token-replaced.
const configDirEnv = "PATTOO_CONFIGDIR"

// UnitManager renders unit templates into SystemdDir and starts them.
type UnitManager struct {
	Runner     shell.Runner
	SystemdDir string
	ConfigDir  string
	User       string
	Group      string
}

// Install renders <templateDir>/<daemon>.service for every daemon, reloads
// systemd, then enables and starts each unit in order.
func (u UnitManager) Install(daemons []string, templateDir, invocation string) error {
	replacer := strings.NewReplacer(
		placeholderInstallation, invocation,
		placeholderUser, u.User,
		placeholderGroup, u.Group,
	)

	// Render every unit before touching systemd
	for _, daemon := range daemons {
		if err := u.render(replacer, daemon, templateDir); err != nil {
			return err
		}
	}

	// Pick up the new unit files
	if err := u.systemctl("daemon-reload"); err != nil {
		return err
	}

	// Enable for boot and start now, one daemon at a time in list order
	for _, daemon := range daemons {
		if err := u.systemctl("enable", daemon); err != nil {
			return err
		}
		if err := u.systemctl("start", daemon); err != nil {
			return err
		}
		logger.Info("[INFO] Started %s\n", daemon)
	}
	return nil
}

func (u UnitManager) render(replacer *strings.Replacer, daemon, templateDir string) error {
	unit := daemon + ".service"
	src := filepath.Join(templateDir, unit)
	raw, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read unit template %s: %w", src, err)
	}

	dst := filepath.Join(u.SystemdDir, unit)
	if err := writeFile(dst, []byte(u.renderUnit(replacer, string(raw))), 0644); err != nil {
		return fmt.Errorf("failed to install unit %s: %w", dst, err)
	}
	logger.Info("[INFO] Installed unit %s\n", dst)
	return nil
}

// renderUnit substitutes the placeholders of one template. Any line that
// mentions PATTOO_CONFIGDIR becomes the quoted Environment= assignment.
func (u UnitManager) renderUnit(replacer *strings.Replacer, template string) string {
	lines := strings.Split(template, "\n")
	for i, line := range lines {
		if strings.Contains(line, configDirEnv) {
			lines[i] = fmt.Sprintf("Environment=\"%s=%s\"", configDirEnv, u.ConfigDir)
			continue
		}
		lines[i] = replacer.Replace(line)
	}
	return strings.Join(lines, "\n")
}

func (u UnitManager) systemctl(args ...string) error {
	if output, err := u.Runner.Output("systemctl", args...); err != nil {
		logger.Error("[ERROR] systemctl %s failed: %v\nOutput: %s\n", strings.Join(args, " "), err, output)
		return err
	}
	return nil
}
