package ui

import (
	"fmt"
	"io"
)

// StatusDisplay prints one-line feedback to a terminal writer.
type StatusDisplay struct {
	formatter *Formatter
	out       io.Writer
	enabled   bool
}

func NewStatusDisplay(formatter *Formatter, out io.Writer, enabled bool) *StatusDisplay {
	return &StatusDisplay{
		formatter: formatter,
		out:       out,
		enabled:   enabled,
	}
}

func (s *StatusDisplay) Info(message string) {
	if !s.enabled {
		return
	}
	fmt.Fprintln(s.out, s.formatter.FormatInfo(message))
}

func (s *StatusDisplay) Success(message string) {
	if !s.enabled {
		return
	}
	fmt.Fprintln(s.out, s.formatter.FormatSuccess(message))
}

func (s *StatusDisplay) Error(err error) {
	fmt.Fprintln(s.out, s.formatter.FormatError(err))
}

func (s *StatusDisplay) Print(text string) {
	fmt.Fprintln(s.out, text)
}
