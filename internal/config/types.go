package config

// DefaultConfigDir is used when PATTOO_CONFIGDIR is not set.
const DefaultConfigDir = "/etc/pattoo"

// ConfigDirEnv names the environment variable that overrides DefaultConfigDir.
const ConfigDirEnv = "PATTOO_CONFIGDIR"

// Daemons is the ordered list of systemd units the agent ships.
var Daemons = []string{
	"pattoo_agent_linux_autonomousd",
	"pattoo_agent_linux_spoked",
	"pattoo_agent_linux_hubd",
}

// Context is the process-wide configuration captured once at startup and
// handed to every collaborator that needs it.
type Context struct {
	ConfigDir string
}

// Settings controls how the installer itself behaves. Every field has a
// default and may be overridden by the YAML file given with --config.
//   - ServiceAccount: OS user the agent runs as.
//   - CIAccount: user name that marks a CI run (checks skipped, no venv).
//   - DefaultHome: home used when the service account is missing or has none.
//   - SystemdDir: where rendered unit files are written.
//   - Python: interpreter used to create the virtual environment.
type Settings struct {
	ServiceAccount string        `yaml:"service_account"`
	CIAccount      string        `yaml:"ci_account"`
	DefaultHome    string        `yaml:"default_home"`
	SystemdDir     string        `yaml:"systemd_dir"`
	Python         string        `yaml:"python"`
	Agent          AgentDefaults `yaml:"agent"`
}

// AgentDefaults are the values written into freshly created agent
// configuration files.
type AgentDefaults struct {
	Language              string `yaml:"language"`
	LogDirectory          string `yaml:"log_directory"`
	LogLevel              string `yaml:"log_level"`
	CacheDirectory        string `yaml:"cache_directory"`
	DaemonDirectory       string `yaml:"daemon_directory"`
	SystemDaemonDirectory string `yaml:"system_daemon_directory"`
	APIAddress            string `yaml:"api_address"`
	APIPort               int    `yaml:"api_port"`
	PollingInterval       int    `yaml:"polling_interval"`
	SpokeListenAddress    string `yaml:"spoke_listen_address"`
	SpokePort             int    `yaml:"spoke_port"`
}

// DefaultSettings returns the settings used when no --config file is given.
func DefaultSettings() Settings {
	return Settings{
		ServiceAccount: "pattoo",
		CIAccount:      "travis",
		DefaultHome:    "/home/pattoo",
		SystemdDir:     "/etc/systemd/system",
		Python:         "python3",
		Agent: AgentDefaults{
			Language:              "en",
			LogDirectory:          "/var/log/pattoo",
			LogLevel:              "debug",
			CacheDirectory:        "/opt/pattoo-cache",
			DaemonDirectory:       "/opt/pattoo-daemon",
			SystemDaemonDirectory: "/var/run/pattoo",
			APIAddress:            "127.0.0.1",
			APIPort:               20201,
			PollingInterval:       300,
			SpokeListenAddress:    "0.0.0.0",
			SpokePort:             5000,
		},
	}
}
