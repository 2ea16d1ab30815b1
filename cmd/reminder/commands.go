package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/letiantian/reminder/internal/reminder"
	"github.com/letiantian/reminder/internal/repl"
	"github.com/letiantian/reminder/internal/ui"
)

// rootAction treats bare arguments as a reminder message.
func (e *appEnv) rootAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return e.add(c)
}

func (e *appEnv) add(c *cli.Context) error {
	svc, closeFn, err := e.openService()
	if err != nil {
		return err
	}
	defer closeFn()

	entry, err := svc.Submit(context.Background(), reminder.Submission{
		Message: strings.Join(c.Args(), " "),
		When:    c.String("when"),
		After:   c.String("after"),
		Repeat:  c.Int("repeat"),
	})
	if err != nil {
		return err
	}

	e.status.Print(e.formatter.FormatAdded(entry))
	return nil
}

func (e *appEnv) list(coll reminder.Collection) cli.ActionFunc {
	return func(_ *cli.Context) error {
		svc, closeFn, err := e.openService()
		if err != nil {
			return err
		}
		defer closeFn()

		entries, err := svc.Store().List(context.Background(), coll)
		if err != nil {
			return err
		}

		title := "pending"
		if coll == reminder.History {
			title = "history"
		}
		e.status.Print(e.formatter.FormatEntries(title, entries))
		return nil
	}
}

func (e *appEnv) delete(c *cli.Context) error {
	ctx := context.Background()

	svc, closeFn, err := e.openService()
	if err != nil {
		return err
	}
	defer closeFn()
	store := svc.Store()

	var ids []int64
	for _, arg := range c.Args() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id: %s", arg)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		ids, err = e.pickPending(ctx, store)
		if errors.Is(err, ui.ErrCancelled) {
			e.status.Info("Nothing deleted.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	for _, id := range ids {
		if _, err := store.Get(ctx, reminder.Pending, id); err != nil {
			return err
		}
		if err := store.Delete(ctx, reminder.Pending, id); err != nil {
			return err
		}
		e.status.Success(fmt.Sprintf("Deleted reminder #%d", id))
	}
	return nil
}

func (e *appEnv) pickPending(ctx context.Context, store *reminder.Store) ([]int64, error) {
	entries, err := store.List(ctx, reminder.Pending)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		e.status.Info("No pending reminders.")
		return nil, nil
	}

	options := make([]ui.SelectorOption, len(entries))
	for i, en := range entries {
		options[i] = ui.SelectorOption{
			Label:       fmt.Sprintf("#%d %s", en.ID, en.DueAt.Format()),
			Description: en.Message,
		}
	}

	picked, err := ui.NewSelector("Delete which reminders?", options, true, e.cfg.UI.ColoredOutput).Run()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(picked))
	for _, i := range picked {
		ids = append(ids, entries[i].ID)
	}
	return ids, nil
}

func (e *appEnv) clean(_ *cli.Context) error {
	svc, closeFn, err := e.openService()
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Clean(context.Background())
	if err != nil {
		return err
	}

	e.status.Success(fmt.Sprintf("Purged %d stale pending, cleared %d history",
		res.PurgedPending, res.ClearedHistory))
	return nil
}

func (e *appEnv) shell(_ *cli.Context) error {
	svc, closeFn, err := e.openService()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := shutdownContext()
	defer stop()

	r, err := repl.NewREPL(svc, e.cfg)
	if err != nil {
		return err
	}
	return r.Start(ctx)
}
