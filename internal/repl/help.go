package repl

const helpText = `Commands:
  /add [--when T] [--after T] [--repeat N] <message>   schedule a reminder
  /list                                               pending reminders
  /history                                            fired reminders
  /delete <id>                                        remove a pending reminder
  /clean                                              purge stale pending, clear history
  /help                                               this text
  /quit                                               leave the shell

A line without a leading slash is added as a reminder.

Time expressions are <number><unit> pairs in the order Y M D h m s:
  --when 18h30m     today at 18:30 (fields not given are taken from now)
  --when 12D9h0m0s  the 12th of this month at 09:00:00
  --after 1D2h      26 hours from now (Y and M are ignored by --after)
If both are given, --when wins.`
