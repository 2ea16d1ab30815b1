package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Notifier kinds.
const (
	NotifierDesktop  = "desktop"
	NotifierTelegram = "telegram"
	NotifierTerminal = "terminal"
)

const envPrefix = "REMINDER_"

// Config is loaded once at startup and handed to constructors by value or
// pointer; nothing mutates it afterwards.
type Config struct {
	Dir       string          `koanf:"dir"`
	DBFile    string          `koanf:"db_file"`
	PidFile   string          `koanf:"pid_file"`
	LogFile   string          `koanf:"log_file"`
	HistFile  string          `koanf:"shell_history_file"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Notifier  NotifierConfig  `koanf:"notifier"`
	Log       LogConfig       `koanf:"log"`
	UI        UIConfig        `koanf:"ui"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

type SchedulerConfig struct {
	PollInterval int  `koanf:"poll_interval"` // seconds
	Drain        bool `koanf:"drain"`         // fire every due item per tick instead of one
	GraceFactor  int  `koanf:"grace_factor"`
}

type NotifierConfig struct {
	Kind          string         `koanf:"kind"`
	Interval      int            `koanf:"interval"` // seconds between repeats
	DefaultRepeat int            `koanf:"default_repeat"`
	Telegram      TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// Load layers defaults, the YAML file at configPath (if it exists) and
// REMINDER_* environment variables, in that order. A .env file next to the
// config file is read into the environment first; variables already set
// win over it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}

		dotenv := filepath.Join(filepath.Dir(configPath), ".env")
		if _, err := os.Stat(dotenv); err == nil {
			if err := godotenv.Load(dotenv); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Dir = expandPath(cfg.Dir)

	return &cfg, nil
}

// envKey maps REMINDER_SCHEDULER_POLL_INTERVAL to scheduler.poll_interval.
// Only the first underscore after a known section becomes a dot, so keys
// that contain underscores themselves survive.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range []string{"scheduler_", "notifier_telegram_", "notifier_", "log_", "ui_", "metrics_"} {
		if strings.HasPrefix(key, section) {
			head := strings.ReplaceAll(strings.TrimSuffix(section, "_"), "_", ".")
			return head + "." + strings.TrimPrefix(key, section)
		}
	}
	return key
}

func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}

	if c.Scheduler.PollInterval <= 0 {
		return fmt.Errorf("scheduler.poll_interval must be positive, got %d", c.Scheduler.PollInterval)
	}

	if c.Scheduler.GraceFactor <= 0 {
		return fmt.Errorf("scheduler.grace_factor must be positive, got %d", c.Scheduler.GraceFactor)
	}

	if c.Notifier.Interval < 0 {
		return fmt.Errorf("notifier.interval must not be negative")
	}

	if c.Notifier.DefaultRepeat <= 0 {
		return fmt.Errorf("notifier.default_repeat must be positive")
	}

	switch c.Notifier.Kind {
	case NotifierDesktop, NotifierTerminal:
	case NotifierTelegram:
		if c.Notifier.Telegram.BotToken == "" || c.Notifier.Telegram.ChatID == "" {
			return fmt.Errorf("telegram notifier needs notifier.telegram.bot_token and chat_id " +
				"(set REMINDER_NOTIFIER_TELEGRAM_BOT_TOKEN / REMINDER_NOTIFIER_TELEGRAM_CHAT_ID)")
		}
	default:
		return fmt.Errorf("unknown notifier kind: %s (supported: %s, %s, %s)",
			c.Notifier.Kind, NotifierDesktop, NotifierTelegram, NotifierTerminal)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.Log.Level)
	}

	return nil
}

// DBPath returns the absolute path of the SQLite database.
func (c *Config) DBPath() string { return c.path(c.DBFile) }

// PidPath returns the path of the daemon pid file.
func (c *Config) PidPath() string { return c.path(c.PidFile) }

// LogPath returns the path the detached daemon writes its output to.
func (c *Config) LogPath() string { return c.path(c.LogFile) }

// ShellHistoryPath is where the interactive shell keeps its line history.
func (c *Config) ShellHistoryPath() string { return c.path(c.HistFile) }

func (c *Config) path(name string) string {
	name = expandPath(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// PollInterval is the scheduler tick length.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Scheduler.PollInterval) * time.Second
}

// RepeatInterval is the pause between repeated notifications.
func (c *Config) RepeatInterval() time.Duration {
	return time.Duration(c.Notifier.Interval) * time.Second
}

// Grace is how far behind now a pending entry may be before clean purges it.
func (c *Config) Grace() time.Duration {
	return time.Duration(c.Scheduler.GraceFactor) * c.PollInterval()
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
