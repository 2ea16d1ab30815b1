package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/letiantian/reminder/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	BannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("215")). // Orange
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(1, 4)
)

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, msg)
}

func (f *Formatter) FormatStatus(msg string) string {
	return f.render(StatusStyle, msg)
}

// FormatAdded confirms a new pending reminder.
func (f *Formatter) FormatAdded(e *reminder.Entry) string {
	return f.FormatSuccess(fmt.Sprintf("Reminder #%d scheduled", e.ID)) +
		f.render(DimStyle, fmt.Sprintf(" at %s (x%d)", e.DueAt.Format(), e.Repeat))
}

// FormatEntries lists reminders. Plain mode keeps the classic
// "id -> due -> message" lines so output stays greppable; colored mode renders a
// markdown table through glamour.
func (f *Formatter) FormatEntries(title string, entries []reminder.Entry) string {
	if len(entries) == 0 {
		return f.FormatStatus(fmt.Sprintf("No %s reminders.", title))
	}

	if !f.colored {
		var b strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&b, "%d -> %s -> %s\n", e.ID, e.DueAt.String(), e.Message)
		}
		return strings.TrimSuffix(b.String(), "\n")
	}

	rendered, err := renderMarkdown(entriesMarkdown(title, entries))
	if err != nil {
		return f.render(HeaderStyle, title) + "\n" + entriesMarkdown(title, entries)
	}
	return rendered
}

func entriesMarkdown(title string, entries []reminder.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%d)\n\n", strings.ToUpper(title[:1])+title[1:], len(entries))
	b.WriteString("| ID | Due | Repeat | Message |\n")
	b.WriteString("|---:|-----|------:|---------|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %d | %s | %d | %s |\n", e.ID, e.DueAt.Format(), e.Repeat, escapeCell(e.Message))
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(rendered), nil
}

// FormatBanner is the terminal rendering of a fired reminder.
func (f *Formatter) FormatBanner(msg string, at time.Time) string {
	stamp := at.Format("15:04:05")
	if !f.colored {
		return fmt.Sprintf("[%s] REMINDER: %s", stamp, msg)
	}
	return BannerStyle.Render(msg) + "\n" + f.render(DimStyle, "  reminder fired at "+stamp)
}

// FormatDaemonStatus describes whether the background scheduler runs.
func (f *Formatter) FormatDaemonStatus(pid int, running bool, pending int) string {
	if !running {
		return f.FormatStatus("Process is stopped") +
			f.render(DimStyle, fmt.Sprintf(" (%d pending)", pending))
	}
	return f.FormatSuccess(fmt.Sprintf("Process (pid %d) is running...", pid)) +
		f.render(DimStyle, fmt.Sprintf(" (%d pending)", pending))
}
