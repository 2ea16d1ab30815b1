package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/letiantian/reminder/internal/dueat"
	"github.com/letiantian/reminder/internal/reminder"
)

// Store is the part of the reminder store the loop needs.
type Store interface {
	EarliestPending(ctx context.Context) (*reminder.Entry, error)
	MoveToHistory(ctx context.Context, e reminder.Entry) error
}

// Recorder receives counts of what the loop and the notifier did. The
// metrics package implements it.
type Recorder interface {
	ReminderFired()
	TickFailed()
	NotificationSent()
	NotificationFailed()
}

type nopRecorder struct{}

func (nopRecorder) ReminderFired()      {}
func (nopRecorder) TickFailed()         {}
func (nopRecorder) NotificationSent()   {}
func (nopRecorder) NotificationFailed() {}

// Loop polls the store on a fixed interval and fires due reminders.
type Loop struct {
	store    Store
	notifier Notifier
	interval time.Duration
	drain    bool
	now      func() time.Time
	log      *slog.Logger
	rec      Recorder
}

// Option configures a Loop.
type Option func(*Loop)

// WithDrain makes a tick fire every due reminder instead of only the
// earliest one.
func WithDrain(drain bool) Option {
	return func(l *Loop) { l.drain = drain }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithLogger sets the loop's logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// WithRecorder reports fired reminders and failed ticks to rec.
func WithRecorder(rec Recorder) Option {
	return func(l *Loop) { l.rec = rec }
}

// New creates a Loop. It does nothing until Run is called.
func New(store Store, notifier Notifier, interval time.Duration, opts ...Option) *Loop {
	l := &Loop{
		store:    store,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		log:      slog.Default(),
		rec:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With("component", "scheduler")
	return l
}

// Run checks once immediately and then on every tick until ctx is
// cancelled. A storage error stops the loop and is returned; the caller is
// expected to treat it as fatal.
func (l *Loop) Run(ctx context.Context) error {
	if l.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", l.interval)
	}

	l.log.Info("started", "interval", l.interval, "drain", l.drain)

	if err := l.check(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info("shutting down")
			return nil
		case <-ticker.C:
			if err := l.check(ctx); err != nil {
				return err
			}
		}
	}
}

func (l *Loop) check(ctx context.Context) error {
	_, err := l.Tick(ctx)
	if err != nil && ctx.Err() != nil {
		// shutdown raced a store call
		return nil
	}
	if err != nil {
		l.rec.TickFailed()
		l.log.Error("tick failed", "err", err)
	}
	return err
}

// Tick runs one poll: fetch the earliest pending entry and, if it is due,
// notify and archive it. It returns how many entries fired.
func (l *Loop) Tick(ctx context.Context) (int, error) {
	fired := 0
	for {
		e, err := l.store.EarliestPending(ctx)
		if err != nil {
			return fired, fmt.Errorf("failed to fetch earliest pending: %w", err)
		}
		if e == nil {
			l.log.Debug("nothing pending")
			return fired, nil
		}

		now := dueat.FromTime(l.now().Local())
		if now < e.DueAt {
			l.log.Debug("next reminder not due", "id", e.ID, "due_at", e.DueAt.String())
			return fired, nil
		}

		l.log.Info("firing", "id", e.ID, "due_at", e.DueAt.String(), "repeat", e.Repeat)
		l.notifier.Display(e.Message, e.Repeat)

		if err := l.store.MoveToHistory(ctx, *e); err != nil {
			return fired, fmt.Errorf("failed to archive reminder %d: %w", e.ID, err)
		}
		fired++
		l.rec.ReminderFired()

		if !l.drain {
			return fired, nil
		}
	}
}
