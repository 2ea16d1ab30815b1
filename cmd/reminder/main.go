// Command reminder schedules personal reminders and runs the background
// process that fires them.
//
// Usage:
//
//	reminder --after 25m tea is ready     # add a reminder
//	reminder start                         # start the background scheduler
//	reminder list                          # show pending reminders
//	reminder shell                         # interactive shell
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/letiantian/reminder/internal/config"
	"github.com/letiantian/reminder/internal/reminder"
	"github.com/letiantian/reminder/internal/ui"
)

var version = "dev"

func main() {
	e := &appEnv{out: os.Stdout}

	if err := newApp(e).Run(os.Args); err != nil {
		f := e.formatter
		if f == nil {
			f = ui.NewFormatter(false)
		}
		fmt.Fprintln(os.Stderr, f.FormatError(err))
		os.Exit(1)
	}
}

func newApp(e *appEnv) *cli.App {
	return &cli.App{
		Name:      "reminder",
		HelpName:  "reminder",
		Usage:     "a personal reminder scheduler",
		UsageText: "reminder [--when T] [--after T] [--repeat N] <message...>\n   reminder <command> [arguments...]",
		Version:   version,
		Before:    e.load,
		Flags:     append([]cli.Flag{configFlag}, addFlags...),
		Action:    e.rootAction,
		Commands: []cli.Command{
			{
				Name:   "start",
				Usage:  "start the background scheduler",
				Action: e.start,
			},
			{
				Name:   "stop",
				Usage:  "stop the background scheduler",
				Action: e.stop,
			},
			{
				Name:   "restart",
				Usage:  "restart the background scheduler",
				Action: e.restart,
			},
			{
				Name:   "status",
				Usage:  "report whether the scheduler is running",
				Action: e.showStatus,
			},
			{
				Name:   "run",
				Usage:  "run the scheduler in this process",
				Flags:  runFlags,
				Action: e.run,
			},
			{
				Name:                   "add",
				Aliases:                []string{"a"},
				Usage:                  "schedule a reminder",
				ArgsUsage:              "<message...>",
				Description:            addDescription,
				Flags:                  addFlags,
				UseShortOptionHandling: true,
				Action:                 e.add,
			},
			{
				Name:    "list",
				Aliases: []string{"l", "ls"},
				Usage:   "show pending reminders",
				Action:  e.list(reminder.Pending),
			},
			{
				Name:   "history",
				Usage:  "show fired reminders",
				Action: e.list(reminder.History),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "remove pending reminders; pick interactively when no id is given",
				ArgsUsage: "[id...]",
				Action:    e.delete,
			},
			{
				Name:   "clean",
				Usage:  "purge stale pending reminders and clear history",
				Action: e.clean,
			},
			{
				Name:   "shell",
				Usage:  "interactive reminder shell",
				Action: e.shell,
			},
		},
	}
}

const addDescription = `Time expressions are <number><unit> pairs with units in the order
   Y M D h m s, e.g. 1D2h or 18h30m.

   --when sets the named fields of the current time (an absolute time);
   --after adds days, hours, minutes and seconds to the current time.
   When both are given --when wins; with neither the reminder is due now.`

var configFlag = cli.StringFlag{
	Name:   "config, c",
	Usage:  "path to the config file",
	Value:  config.GetDefaultConfigPath(),
	EnvVar: "REMINDER_CONFIG",
}

var addFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "when, w",
		Usage: "absolute time expression, e.g. 18h30m",
	},
	cli.StringFlag{
		Name:  "after, a",
		Usage: "relative time expression, e.g. 1D2h",
	},
	cli.IntFlag{
		Name:  "repeat, r",
		Usage: "how many times to show the notification (default from config)",
	},
}

var runFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "foreground, f",
		Usage: "stay attached and print reminders to this terminal",
	},
}
