package repl

import (
	"fmt"
)

func (r *REPL) displayError(err error) {
	fmt.Fprintln(r.out, r.formatter.FormatError(err))
}

func (r *REPL) displayWelcome() {
	fmt.Fprintln(r.out, r.formatter.FormatInfo("Reminder shell. Type /help for commands, /quit to leave."))
}

func (r *REPL) displayHelp() {
	fmt.Fprintln(r.out, helpText)
}
