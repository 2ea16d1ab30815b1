package reminder

import (
	"errors"
	"fmt"

	"github.com/letiantian/reminder/internal/timeexpr"
)

var (
	ErrMissingMessage = errors.New("the content should be given")
	ErrNotFound       = errors.New("reminder not found")

	// Re-exported so callers of Submit can classify failures without
	// importing the parser.
	ErrInvalidTimeExpression = timeexpr.ErrInvalidTimeExpression
	ErrInvalidDateTime       = timeexpr.ErrInvalidDateTime
)

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err came from the database layer.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
