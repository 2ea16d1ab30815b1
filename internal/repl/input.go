package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/letiantian/reminder/internal/reminder"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

// parseAddArgs reads --when, --after and --repeat (also -w, -a, -r and the
// --flag=value form) up to the first word that is not a flag. The rest of
// the line is the message.
func parseAddArgs(args string) (reminder.Submission, error) {
	var sub reminder.Submission

	fields := strings.Fields(args)
	i := 0
	for ; i < len(fields); i++ {
		f := fields[i]
		if f == "--" {
			i++
			break
		}
		if !strings.HasPrefix(f, "-") {
			break
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(f, "-"), "=")
		if !hasValue {
			if i+1 >= len(fields) {
				return sub, fmt.Errorf("flag %s needs a value", f)
			}
			i++
			value = fields[i]
		}

		switch name {
		case "when", "w":
			sub.When = value
		case "after", "a":
			sub.After = value
		case "repeat", "r":
			n, err := strconv.Atoi(value)
			if err != nil {
				return sub, fmt.Errorf("invalid repeat: %s", value)
			}
			sub.Repeat = n
		default:
			return sub, fmt.Errorf("unknown flag: %s", f)
		}
	}

	sub.Message = strings.Join(fields[i:], " ")
	return sub, nil
}

func setupReadline(historyFile string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "reminder> ",
		HistoryFile:         historyFile,
		AutoComplete:        completer,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})

	return rl, err
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("/add",
		readline.PcItem("--when"),
		readline.PcItem("--after"),
		readline.PcItem("--repeat"),
	),
	readline.PcItem("/list"),
	readline.PcItem("/history"),
	readline.PcItem("/delete"),
	readline.PcItem("/clean"),
	readline.PcItem("/help"),
	readline.PcItem("/quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}
