package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/letiantian/reminder/internal/config"
	"github.com/letiantian/reminder/internal/daemon"
	"github.com/letiantian/reminder/internal/logger"
	"github.com/letiantian/reminder/internal/reminder"
	"github.com/letiantian/reminder/internal/ui"
)

// appEnv is what every command shares once the config is loaded.
type appEnv struct {
	configPath string
	cfg        *config.Config
	out        io.Writer
	formatter  *ui.Formatter
	status     *ui.StatusDisplay
}

func (e *appEnv) load(c *cli.Context) error {
	e.configPath = c.String("config")

	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e.cfg = cfg
	e.formatter = ui.NewFormatter(cfg.UI.ColoredOutput)
	e.status = ui.NewStatusDisplay(e.formatter, e.out, true)
	return nil
}

// cliLogger keeps one-shot commands quiet unless debug logging is on.
func (e *appEnv) cliLogger() *slog.Logger {
	level := "warn"
	if logger.ParseLevel(e.cfg.Log.Level) == slog.LevelDebug {
		level = "debug"
	}
	return logger.New(os.Stderr, level, e.cfg.UI.ColoredOutput)
}

func (e *appEnv) openService() (*reminder.Service, func(), error) {
	store, err := reminder.NewStore(e.cfg.DBPath())
	if err != nil {
		return nil, nil, err
	}

	svc := reminder.NewService(store, e.cfg.Notifier.DefaultRepeat, e.cfg.Grace(),
		reminder.WithLogger(e.cliLogger()))
	return svc, func() { store.Close() }, nil
}

// newDaemon re-runs this binary with the same config file.
func (e *appEnv) newDaemon() *daemon.Daemon {
	return daemon.New(e.cfg.PidPath(), e.cfg.LogPath(), "--config", e.configPath, "run")
}
