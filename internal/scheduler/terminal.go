package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/letiantian/reminder/internal/ui"
)

// TerminalSender prints a banner to a writer. It backs the foreground mode
// of the daemon.
type TerminalSender struct {
	mu        sync.Mutex
	out       io.Writer
	formatter *ui.Formatter
	now       func() time.Time
}

func NewTerminalSender(out io.Writer, formatter *ui.Formatter) *TerminalSender {
	return &TerminalSender{out: out, formatter: formatter, now: time.Now}
}

func (t *TerminalSender) Send(_ context.Context, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintf(t.out, "\a%s\n", t.formatter.FormatBanner(message, t.now()))
	return err
}
