package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/letiantian/reminder/internal/dueat"
)

// Store provides SQLite-backed storage for the pending and history tables.
//
// A single connection is kept open so that writers in this process are
// serialized; SQLite's file lock serializes them against other processes
// (the CLI inserting while the daemon archives).
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at dbPath and ensures
// both tables exist.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, storageErr("create data directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storageErr("open database", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, storageErr("set pragma", err)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	for _, c := range []Collection{Pending, History} {
		_, err := db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id      INTEGER PRIMARY KEY AUTOINCREMENT,
				whento  INTEGER NOT NULL,
				msg     TEXT    NOT NULL,
				repeat  INTEGER NOT NULL DEFAULT 1
			)
		`, c))
		if err != nil {
			return storageErr("create table "+string(c), err)
		}
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_items_whento ON items (whento, id)`)
	return storageErr("create index", err)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func table(c Collection) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("unknown collection %q", string(c))
	}
	return string(c), nil
}

// Insert appends an entry to the collection and returns its id.
func (s *Store) Insert(ctx context.Context, c Collection, due dueat.DueAt, msg string, repeat int) (int64, error) {
	return insert(ctx, s.db, c, due, msg, repeat)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, c Collection, due dueat.DueAt, msg string, repeat int) (int64, error) {
	tbl, err := table(c)
	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (whento, msg, repeat) VALUES (?, ?, ?)`, tbl),
		int64(due), msg, repeat)
	if err != nil {
		return 0, storageErr("insert reminder", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageErr("get inserted ID", err)
	}
	return id, nil
}

// EarliestPending returns the pending entry with the smallest due time,
// ties broken by the smallest id. It returns nil, nil when nothing is pending.
func (s *Store) EarliestPending(ctx context.Context) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, whento, msg, repeat
		FROM items ORDER BY whento ASC, id ASC LIMIT 1
	`)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select earliest pending", err)
	}
	return e, nil
}

// Get returns a single entry by id.
func (s *Store) Get(ctx context.Context, c Collection, id int64) (*Entry, error) {
	tbl, err := table(c)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, whento, msg, repeat FROM %s WHERE id = ?`, tbl), id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", c, id, ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("get reminder", err)
	}
	return e, nil
}

// List returns every entry of the collection ordered by due time.
func (s *Store) List(ctx context.Context, c Collection) ([]Entry, error) {
	tbl, err := table(c)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, whento, msg, repeat FROM %s ORDER BY whento ASC, id ASC`, tbl))
	if err != nil {
		return nil, storageErr("list reminders", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, storageErr("list reminders", err)
	}
	return entries, nil
}

// Count returns the number of rows in the collection.
func (s *Store) Count(ctx context.Context, c Collection) (int, error) {
	tbl, err := table(c)
	if err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tbl)).Scan(&n); err != nil {
		return 0, storageErr("count reminders", err)
	}
	return n, nil
}

// Delete removes an entry by id. A missing id is not an error.
func (s *Store) Delete(ctx context.Context, c Collection, id int64) error {
	return del(ctx, s.db, c, id)
}

func del(ctx context.Context, db execer, c Collection, id int64) error {
	tbl, err := table(c)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, tbl), id)
	return storageErr("delete reminder", err)
}

// MoveToHistory archives a fired pending entry: it is inserted into history
// and then deleted from pending, in one transaction. If the process dies
// before commit the entry stays pending and fires again on the next poll.
func (s *Store) MoveToHistory(ctx context.Context, e Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin move", err)
	}
	defer tx.Rollback()

	if _, err := insert(ctx, tx, History, e.DueAt, e.Message, e.Repeat); err != nil {
		return err
	}
	if err := del(ctx, tx, Pending, e.ID); err != nil {
		return err
	}

	return storageErr("commit move", tx.Commit())
}

// PurgeOldPending deletes pending entries due strictly before threshold and
// returns how many were removed.
func (s *Store) PurgeOldPending(ctx context.Context, threshold dueat.DueAt) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE whento < ?`, int64(threshold))
	if err != nil {
		return 0, storageErr("purge pending", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// Clear deletes every row of the collection. Clearing an empty collection
// is fine.
func (s *Store) Clear(ctx context.Context, c Collection) (int64, error) {
	tbl, err := table(c)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, tbl))
	if err != nil {
		return 0, storageErr("clear "+c.String(), err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e   Entry
		due int64
	)
	if err := row.Scan(&e.ID, &due, &e.Message, &e.Repeat); err != nil {
		return nil, err
	}
	e.DueAt = dueat.DueAt(due)
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
