package reminder

import (
	"fmt"

	"github.com/letiantian/reminder/internal/dueat"
)

// Collection names one of the two reminder tables.
type Collection string

// Collections. The values are the table names.
const (
	Pending Collection = "items"
	History Collection = "history"
)

// Valid reports whether c names a known table.
func (c Collection) Valid() bool {
	return c == Pending || c == History
}

func (c Collection) String() string {
	switch c {
	case Pending:
		return "pending"
	case History:
		return "history"
	}
	return fmt.Sprintf("collection(%s)", string(c))
}

// Entry is one reminder row.
type Entry struct {
	ID      int64       `json:"id"`
	DueAt   dueat.DueAt `json:"due_at"`
	Message string      `json:"message"`
	Repeat  int         `json:"repeat"`
}
