package reminder

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/letiantian/reminder/internal/dueat"
	"github.com/letiantian/reminder/internal/timeexpr"
)

// Submission is a request to create a reminder. When and After are the raw
// time expressions; empty means absent.
type Submission struct {
	Message string
	When    string
	After   string
	Repeat  int
}

// CleanResult reports what a retention pass removed.
type CleanResult struct {
	PurgedPending  int64 `json:"purged_pending"`
	ClearedHistory int64 `json:"cleared_history"`
}

// Service is the submission and maintenance path shared by the CLI, the
// shell and the MCP server.
type Service struct {
	store         *Store
	defaultRepeat int
	grace         time.Duration
	now           func() time.Time
	log           *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for submission records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService builds a Service. defaultRepeat is used for submissions that
// do not ask for a repeat count; grace is how far behind now a pending entry
// may lag before Clean purges it.
func NewService(store *Store, defaultRepeat int, grace time.Duration, opts ...Option) *Service {
	if defaultRepeat < 1 {
		defaultRepeat = 1
	}
	s := &Service{
		store:         store,
		defaultRepeat: defaultRepeat,
		grace:         grace,
		now:           time.Now,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "service")
	return s
}

// Store returns the backing store for read paths.
func (s *Service) Store() *Store { return s.store }

// Submit parses the time expressions and inserts a pending entry. Nothing is
// written when parsing fails.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Entry, error) {
	msg := NormalizeMessage(sub.Message)
	if strings.TrimSpace(msg) == "" {
		return nil, ErrMissingMessage
	}

	due, err := timeexpr.Resolve(sub.When, sub.After, s.now())
	if err != nil {
		return nil, err
	}

	repeat := sub.Repeat
	if repeat < 1 {
		repeat = s.defaultRepeat
	}

	id, err := s.store.Insert(ctx, Pending, due, msg, repeat)
	if err != nil {
		return nil, err
	}

	s.log.Info("reminder added", "id", id, "due_at", due.String(), "repeat", repeat)
	return &Entry{ID: id, DueAt: due, Message: msg, Repeat: repeat}, nil
}

// Clean purges pending entries that are older than the grace window and
// clears the history table.
func (s *Service) Clean(ctx context.Context) (CleanResult, error) {
	var res CleanResult

	threshold := dueat.FromTime(s.now().Local().Add(-s.grace))
	n, err := s.store.PurgeOldPending(ctx, threshold)
	if err != nil {
		return res, err
	}
	res.PurgedPending = n

	n, err = s.store.Clear(ctx, History)
	if err != nil {
		return res, err
	}
	res.ClearedHistory = n

	s.log.Info("cleaned", "purged_pending", res.PurgedPending, "cleared_history", res.ClearedHistory)
	return res, nil
}
