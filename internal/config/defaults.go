package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"dir":      "~/.reminder",
		"db_file":  "reminder.db",
		"pid_file": "reminder.pid",
		"log_file": "reminder.log",

		"shell_history_file": "shell_history",
		"scheduler": map[string]interface{}{
			"poll_interval": 40, // seconds between polls
			"drain":         false,
			"grace_factor":  3, // clean keeps pending items this many polls old
		},
		"notifier": map[string]interface{}{
			"kind":           NotifierDesktop,
			"interval":       60, // seconds between repeats
			"default_repeat": 1,
			"telegram": map[string]interface{}{
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"log": map[string]interface{}{
			"level": "info",
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
		"metrics": map[string]interface{}{
			"addr": "", // e.g. 127.0.0.1:9464; empty disables the endpoint
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.reminder/config.yaml"
}
