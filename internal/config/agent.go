package config

// File names of the agent configuration documents inside Context.ConfigDir.
const (
	ServerConfigFile = "pattoo.yaml"
	AgentConfigFile  = "pattoo_agent.yaml"
)

// ServerDocument is the default content of pattoo.yaml.
func (a AgentDefaults) ServerDocument() map[string]any {
	return map[string]any{
		"pattoo": map[string]any{
			"language":                a.Language,
			"log_directory":           a.LogDirectory,
			"log_level":               a.LogLevel,
			"cache_directory":         a.CacheDirectory,
			"daemon_directory":        a.DaemonDirectory,
			"system_daemon_directory": a.SystemDaemonDirectory,
		},
		"pattoo_agent_api": map[string]any{
			"ip_address":   a.APIAddress,
			"ip_bind_port": a.APIPort,
		},
	}
}

// AgentDocument is the default content of pattoo_agent.yaml. Each daemon
// gets its own section; daemons without specific options get polling only.
func (a AgentDefaults) AgentDocument(daemons []string) map[string]any {
	doc := make(map[string]any, len(daemons))
	for _, daemon := range daemons {
		switch daemon {
		case "pattoo_agent_linux_spoked":
			doc[daemon] = map[string]any{
				"ip_listen_address": a.SpokeListenAddress,
				"ip_bind_port":      a.SpokePort,
			}
		case "pattoo_agent_linux_hubd":
			doc[daemon] = map[string]any{
				"polling_interval": a.PollingInterval,
				"ip_targets": []any{
					map[string]any{"ip_address": "localhost", "ip_bind_port": a.SpokePort},
				},
			}
		default:
			doc[daemon] = map[string]any{"polling_interval": a.PollingInterval}
		}
	}
	return doc
}

// Directories lists the directories referenced by the server document that
// must exist before the daemons start.
func (a AgentDefaults) Directories() []string {
	return []string{a.LogDirectory, a.CacheDirectory, a.DaemonDirectory, a.SystemDaemonDirectory}
}

// FillMissing copies into dst every key of defaults that dst lacks,
// descending into nested maps. Values already present in dst win. It
// reports whether dst changed.
func FillMissing(dst, defaults map[string]any) bool {
	changed := false
	for key, def := range defaults {
		cur, ok := dst[key]
		if !ok || cur == nil {
			dst[key] = def
			changed = true
			continue
		}
		curMap, curOK := cur.(map[string]any)
		defMap, defOK := def.(map[string]any)
		if curOK && defOK && FillMissing(curMap, defMap) {
			changed = true
		}
	}
	return changed
}
