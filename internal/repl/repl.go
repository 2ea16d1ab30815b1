// Package repl is the interactive reminder shell.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chzyer/readline"

	"github.com/letiantian/reminder/internal/config"
	"github.com/letiantian/reminder/internal/reminder"
	"github.com/letiantian/reminder/internal/ui"
)

type REPL struct {
	service   *reminder.Service
	rl        *readline.Instance
	out       io.Writer
	formatter *ui.Formatter
	status    *ui.StatusDisplay
}

func NewREPL(service *reminder.Service, cfg *config.Config) (*REPL, error) {
	rl, err := setupReadline(cfg.ShellHistoryPath())
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	r := newREPL(service, ui.NewFormatter(cfg.UI.ColoredOutput), rl.Stdout())
	r.rl = rl
	return r, nil
}

func newREPL(service *reminder.Service, formatter *ui.Formatter, out io.Writer) *REPL {
	if out == nil {
		out = os.Stdout
	}
	return &REPL{
		service:   service,
		out:       out,
		formatter: formatter,
		status:    ui.NewStatusDisplay(formatter, out, true),
	}
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		quit, err := r.Execute(ctx, input)
		if err != nil {
			r.displayError(err)
		}
		if quit {
			return nil
		}
	}
}

func (r *REPL) Stop() {
	if r.rl != nil {
		r.rl.Close()
	}
}

// Execute runs one line of input. A line that is not a slash command is
// added as a reminder due now, with the same flags /add accepts.
func (r *REPL) Execute(ctx context.Context, input string) (bool, error) {
	isCommand, command, args := parseCommand(input)
	if !isCommand {
		return false, r.handleAdd(ctx, input)
	}

	switch command {
	case "/help", "/h":
		r.displayHelp()
		return false, nil

	case "/add", "/a":
		return false, r.handleAdd(ctx, args)

	case "/list", "/ls", "/l":
		return false, r.handleList(ctx, reminder.Pending)

	case "/history":
		return false, r.handleList(ctx, reminder.History)

	case "/delete", "/del", "/rm":
		return false, r.handleDelete(ctx, args)

	case "/clean":
		return false, r.handleClean(ctx)

	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.out, "\nGoodbye!")
		return true, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) handleAdd(ctx context.Context, args string) error {
	sub, err := parseAddArgs(args)
	if err != nil {
		return err
	}

	entry, err := r.service.Submit(ctx, sub)
	if err != nil {
		return err
	}

	r.status.Print(r.formatter.FormatAdded(entry))
	return nil
}

func (r *REPL) handleList(ctx context.Context, c reminder.Collection) error {
	entries, err := r.service.Store().List(ctx, c)
	if err != nil {
		return err
	}

	title := "pending"
	if c == reminder.History {
		title = "history"
	}
	r.status.Print(r.formatter.FormatEntries(title, entries))
	return nil
}

func (r *REPL) handleDelete(ctx context.Context, args string) error {
	if args == "" {
		return fmt.Errorf("usage: /delete <id>")
	}

	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id: %s", args)
	}

	store := r.service.Store()
	if _, err := store.Get(ctx, reminder.Pending, id); err != nil {
		return err
	}
	if err := store.Delete(ctx, reminder.Pending, id); err != nil {
		return err
	}

	r.status.Success(fmt.Sprintf("Deleted reminder #%d", id))
	return nil
}

func (r *REPL) handleClean(ctx context.Context) error {
	res, err := r.service.Clean(ctx)
	if err != nil {
		return err
	}

	r.status.Success(fmt.Sprintf("Purged %d stale pending, cleared %d history",
		res.PurgedPending, res.ClearedHistory))
	return nil
}
