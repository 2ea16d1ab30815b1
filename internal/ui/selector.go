package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a selection with Ctrl+C.
var ErrCancelled = errors.New("cancelled")

// SelectorOption represents a single option in the selector
type SelectorOption struct {
	Label       string
	Description string
}

// Selector provides an arrow-key navigable menu. On a non-terminal input it
// falls back to reading option numbers from a line.
type Selector struct {
	question    string
	options     []SelectorOption
	selected    int
	multiSelect bool
	selections  map[int]bool
	colored     bool

	in  io.Reader
	out io.Writer

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

// NewSelector creates a selector reading stdin and writing stdout.
func NewSelector(question string, options []SelectorOption, multiSelect bool, colored bool) *Selector {
	return &Selector{
		question:    question,
		options:     options,
		multiSelect: multiSelect,
		selections:  make(map[int]bool),
		colored:     colored,
		in:          os.Stdin,
		out:         os.Stdout,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// Run displays the selector and returns the indexes of the chosen options.
// An empty result means nothing was chosen.
func (s *Selector) Run() ([]int, error) {
	if len(s.options) == 0 {
		return nil, nil
	}

	f, ok := s.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return s.runSimple()
	}
	fd := int(f.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple()
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Fprint(s.out, "\033[?25h") // show cursor
	}()

	fmt.Fprint(s.out, "\033[?25l")

	totalLines := len(s.options) + 3
	s.printMenu()

	reader := bufio.NewReader(s.in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}

		done := false

		switch b {
		case 13, 10: // Enter
			done = true
		case 3, 'q': // Ctrl+C
			s.clearMenu(totalLines)
			return nil, ErrCancelled
		case 'j':
			s.moveDown()
		case 'k':
			s.moveUp()
		case ' ':
			if s.multiSelect {
				s.toggleSelection()
			} else {
				done = true
			}
		case 27: // escape sequence
			b2, _ := reader.ReadByte()
			if b2 == '[' {
				b3, _ := reader.ReadByte()
				switch b3 {
				case 'A':
					s.moveUp()
				case 'B':
					s.moveDown()
				}
			}
		default:
			if b >= '1' && b <= '9' {
				idx := int(b - '1')
				if idx < len(s.options) {
					s.selected = idx
					if s.multiSelect {
						s.toggleSelection()
					} else {
						done = true
					}
				}
			}
		}

		if done {
			s.clearMenu(totalLines)
			return s.getSelected(), nil
		}

		s.clearMenu(totalLines)
		s.printMenu()
	}
}

func (s *Selector) style(st lipgloss.Style, text string) string {
	if !s.colored {
		return text
	}
	return st.Render(text)
}

func (s *Selector) printMenu() {
	var sb strings.Builder

	sb.WriteString(s.style(s.questionStyle, s.question))
	sb.WriteString("\r\n")

	hint := "[j/k or arrows] move  [enter] select  [q] cancel"
	if s.multiSelect {
		hint = "[j/k or arrows] move  [space] toggle  [enter] confirm  [q] cancel"
	}
	sb.WriteString(s.style(s.hintStyle, hint))
	sb.WriteString("\r\n\r\n")

	for i, opt := range s.options {
		cursor := "  "
		if i == s.selected {
			cursor = "> "
		}

		checkbox := ""
		if s.multiSelect {
			if s.selections[i] {
				checkbox = "[x] "
			} else {
				checkbox = "[ ] "
			}
		}

		if i == s.selected {
			sb.WriteString(s.style(s.cursorStyle, cursor))
			sb.WriteString(checkbox)
			sb.WriteString(s.style(s.selectedStyle, opt.label()))
		} else {
			sb.WriteString(s.style(s.dimStyle, cursor))
			sb.WriteString(checkbox)
			sb.WriteString(s.style(s.optionStyle, opt.label()))
		}
		sb.WriteString("\r\n")
	}

	fmt.Fprint(s.out, sb.String())
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(s.out, "\033[A\033[2K\r")
	}
}

// runSimple prints a numbered list and reads space or comma separated
// numbers. A blank line selects nothing.
func (s *Selector) runSimple() ([]int, error) {
	fmt.Fprintln(s.out, s.question)
	for i, opt := range s.options {
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, opt.label())
	}
	if s.multiSelect {
		fmt.Fprint(s.out, "Enter numbers: ")
	} else {
		fmt.Fprint(s.out, "Enter number: ")
	}

	line, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	var result []int
	seen := make(map[int]bool)
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(s.options) {
			return nil, fmt.Errorf("invalid choice: %s", f)
		}
		if seen[n-1] {
			continue
		}
		seen[n-1] = true
		result = append(result, n-1)
		if !s.multiSelect {
			break
		}
	}
	return result, nil
}

func (s *Selector) moveUp() {
	if s.selected > 0 {
		s.selected--
	} else {
		s.selected = len(s.options) - 1
	}
}

func (s *Selector) moveDown() {
	if s.selected < len(s.options)-1 {
		s.selected++
	} else {
		s.selected = 0
	}
}

func (s *Selector) toggleSelection() {
	s.selections[s.selected] = !s.selections[s.selected]
}

func (s *Selector) getSelected() []int {
	if !s.multiSelect {
		return []int{s.selected}
	}
	var result []int
	for i := range s.options {
		if s.selections[i] {
			result = append(result, i)
		}
	}
	if len(result) == 0 {
		return []int{s.selected}
	}
	return result
}

func (o SelectorOption) label() string {
	if o.Description == "" {
		return o.Label
	}
	return o.Label + " - " + o.Description
}
