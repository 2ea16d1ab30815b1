package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/letiantian/reminder/internal/config"
	"github.com/letiantian/reminder/internal/daemon"
	"github.com/letiantian/reminder/internal/logger"
	"github.com/letiantian/reminder/internal/metrics"
	"github.com/letiantian/reminder/internal/reminder"
	"github.com/letiantian/reminder/internal/scheduler"
	"github.com/letiantian/reminder/internal/ui"
)

// shutdownContext is cancelled on SIGINT or SIGTERM.
func shutdownContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (e *appEnv) start(_ *cli.Context) error {
	spinner := ui.NewSpinner(e.out, e.cfg.UI.ColoredOutput)
	spinner.Start("Starting scheduler...")

	pid, err := e.newDaemon().Start()
	if errors.Is(err, daemon.ErrAlreadyRunning) {
		spinner.Stop()
		e.status.Info(fmt.Sprintf("Process (pid %d) is already running.", pid))
		return nil
	}
	if err != nil {
		spinner.StopWithError("Failed to start scheduler")
		return err
	}

	spinner.StopWithMessage(fmt.Sprintf("Scheduler started (pid %d), logging to %s", pid, e.cfg.LogPath()))
	return nil
}

func (e *appEnv) stop(_ *cli.Context) error {
	spinner := ui.NewSpinner(e.out, e.cfg.UI.ColoredOutput)
	spinner.Start("Stopping scheduler...")

	err := e.newDaemon().Stop()
	if errors.Is(err, daemon.ErrNotRunning) {
		spinner.Stop()
		e.status.Info("Process is not running.")
		return nil
	}
	if err != nil {
		spinner.StopWithError("Failed to stop scheduler")
		return err
	}

	spinner.StopWithMessage("Scheduler stopped")
	return nil
}

func (e *appEnv) restart(_ *cli.Context) error {
	spinner := ui.NewSpinner(e.out, e.cfg.UI.ColoredOutput)
	spinner.Start("Restarting scheduler...")

	pid, err := e.newDaemon().Restart()
	if err != nil {
		spinner.StopWithError("Failed to restart scheduler")
		return err
	}

	spinner.StopWithMessage(fmt.Sprintf("Scheduler restarted (pid %d)", pid))
	return nil
}

func (e *appEnv) showStatus(_ *cli.Context) error {
	pid, running := e.newDaemon().IsRunning()

	svc, closeFn, err := e.openService()
	if err != nil {
		return err
	}
	defer closeFn()

	pending, err := svc.Store().Count(context.Background(), reminder.Pending)
	if err != nil {
		return err
	}

	e.status.Print(e.formatter.FormatDaemonStatus(pid, running, pending))
	return nil
}

// run is the scheduler process itself. start launches it detached; with
// --foreground it prints reminders to this terminal.
func (e *appEnv) run(c *cli.Context) error {
	cfg := *e.cfg
	foreground := c.Bool("foreground")
	if foreground {
		cfg.Notifier.Kind = config.NotifierTerminal
	}

	log := logger.New(os.Stderr, cfg.Log.Level, foreground && cfg.UI.ColoredOutput)

	release, err := e.newDaemon().Acquire()
	if err != nil {
		return err
	}
	defer release()

	store, err := reminder.NewStore(cfg.DBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.New(metrics.PendingFunc(func(ctx context.Context) (int, error) {
		return store.Count(ctx, reminder.Pending)
	}))

	notifier, err := scheduler.NewNotifier(&cfg, e.out, log)
	if err != nil {
		return err
	}
	notifier.WithRecorder(m)

	loop := scheduler.New(store, notifier, cfg.PollInterval(),
		scheduler.WithDrain(cfg.Scheduler.Drain),
		scheduler.WithLogger(log),
		scheduler.WithRecorder(m),
	)

	ctx, stop := shutdownContext()
	defer stop()

	log.Info("scheduler process up", "pid", os.Getpid(), "db", cfg.DBPath(), "notifier", cfg.Notifier.Kind)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	if cfg.Metrics.Addr != "" {
		g.Go(func() error { return m.Serve(gctx, cfg.Metrics.Addr, log) })
	}

	if err := g.Wait(); err != nil {
		log.Error("scheduler stopped", "err", err)
		return err
	}

	log.Info("scheduler stopped")
	return nil
}
