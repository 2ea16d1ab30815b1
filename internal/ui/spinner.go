package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress while the CLI waits on the daemon.
type Spinner struct {
	frames   []string
	message  string
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	out      io.Writer
	style    lipgloss.Style
	msgStyle lipgloss.Style
	interval time.Duration
	colored  bool
}

func NewSpinner(out io.Writer, colored bool) *Spinner {
	return &Spinner{
		frames:   spinnerFrames,
		out:      out,
		style:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		msgStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		interval: 80 * time.Millisecond,
		colored:  colored,
	}
}

// Start begins the animation. Calling Start on a running spinner only
// changes its message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	go s.animate()
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	<-done
	fmt.Fprint(s.out, "\r\033[K")
}

func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	mark := "✓"
	if s.colored {
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render(mark)
	}
	fmt.Fprintln(s.out, mark+" "+message)
}

func (s *Spinner) StopWithError(message string) {
	s.Stop()
	mark := "✗"
	if s.colored {
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(mark)
	}
	fmt.Fprintln(s.out, mark+" "+message)
}

func (s *Spinner) animate() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()

			s.render(frame, msg)
			frame = (frame + 1) % len(s.frames)
		}
	}
}

func (s *Spinner) render(frame int, message string) {
	spinChar := s.frames[frame]
	if s.colored {
		fmt.Fprintf(s.out, "\r\033[K%s %s", s.style.Render(spinChar), s.msgStyle.Render(message))
		return
	}
	fmt.Fprintf(s.out, "\r\033[K%s %s", spinChar, message)
}
