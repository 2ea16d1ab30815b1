package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/letiantian/reminder/internal/config"
	"github.com/letiantian/reminder/internal/ui"
)

// Notifier shows a fired reminder. Display must not block the poll loop and
// reports nothing back.
type Notifier interface {
	Display(message string, repeat int)
}

// Sender delivers a single copy of a message.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// Repeater turns a Sender into a Notifier: each Display runs on its own
// goroutine and sends the message repeat times, pausing interval between
// sends. Failures are logged.
type Repeater struct {
	sender   Sender
	interval time.Duration
	log      *slog.Logger
	rec      Recorder
	wg       sync.WaitGroup
}

// NewRepeater wraps sender.
func NewRepeater(sender Sender, interval time.Duration, log *slog.Logger) *Repeater {
	return &Repeater{
		sender:   sender,
		interval: interval,
		log:      log.With("component", "notifier"),
		rec:      nopRecorder{},
	}
}

// WithRecorder reports every send attempt to rec. Call it before the first
// Display.
func (r *Repeater) WithRecorder(rec Recorder) *Repeater {
	r.rec = rec
	return r
}

func (r *Repeater) Display(message string, repeat int) {
	if repeat < 1 {
		repeat = 1
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for i := 0; i < repeat; i++ {
			if i > 0 && r.interval > 0 {
				time.Sleep(r.interval)
			}
			if err := r.sender.Send(context.Background(), message); err != nil {
				r.rec.NotificationFailed()
				r.log.Warn("notification failed", "attempt", i+1, "of", repeat, "err", err)
				continue
			}
			r.rec.NotificationSent()
		}
	}()
}

// Wait blocks until every started Display has finished.
func (r *Repeater) Wait() {
	r.wg.Wait()
}

// NewNotifier builds the Notifier selected by cfg.Notifier.Kind. out is
// where the terminal notifier writes.
func NewNotifier(cfg *config.Config, out io.Writer, log *slog.Logger) (*Repeater, error) {
	var sender Sender

	switch cfg.Notifier.Kind {
	case config.NotifierDesktop:
		sender = NewDesktopSender("Reminder")
	case config.NotifierTelegram:
		sender = NewTelegramSender(cfg.Notifier.Telegram.BotToken, cfg.Notifier.Telegram.ChatID)
	case config.NotifierTerminal:
		sender = NewTerminalSender(out, ui.NewFormatter(cfg.UI.ColoredOutput))
	default:
		return nil, fmt.Errorf("unknown notifier kind: %s", cfg.Notifier.Kind)
	}

	return NewRepeater(sender, cfg.RepeatInterval(), log), nil
}
