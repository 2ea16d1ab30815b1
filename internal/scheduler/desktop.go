package scheduler

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// DesktopSender pops up a native notification. On Linux it talks to the
// session bus and falls back to notify-send; elsewhere it shells out to the
// platform's notifier.
type DesktopSender struct {
	title string
	goos  string
	run   func(ctx context.Context, name string, args ...string) error
	bus   func(ctx context.Context, title, message string) error
}

func NewDesktopSender(title string) *DesktopSender {
	return &DesktopSender{
		title: title,
		goos:  runtime.GOOS,
		run:   runCommand,
		bus:   busNotify,
	}
}

func (d *DesktopSender) Send(ctx context.Context, message string) error {
	if d.goos == "linux" && d.bus != nil {
		if err := d.bus(ctx, d.title, message); err == nil {
			return nil
		}
	}

	name, args := desktopCommand(d.goos, d.title, message)
	if err := d.run(ctx, name, args...); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}

func desktopCommand(goos, title, message string) (string, []string) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleQuote(message), appleQuote(title))
		return "osascript", []string{"-e", script}
	case "windows":
		return "msg", []string{"*", title + ": " + message}
	default:
		return "notify-send", []string{"--urgency=critical", title, message}
	}
}

// appleQuote renders s as an AppleScript string literal.
func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
