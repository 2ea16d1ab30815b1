package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letiantian/reminder/internal/dueat"
	"github.com/letiantian/reminder/internal/logger"
	"github.com/letiantian/reminder/internal/reminder"
)

type memStore struct {
	mu       sync.Mutex
	pending  []reminder.Entry
	history  []reminder.Entry
	fetchErr error
	moveErr  error
}

func (m *memStore) EarliestPending(context.Context) (*reminder.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if len(m.pending) == 0 {
		return nil, nil
	}
	sort.Slice(m.pending, func(i, j int) bool {
		if m.pending[i].DueAt != m.pending[j].DueAt {
			return m.pending[i].DueAt < m.pending[j].DueAt
		}
		return m.pending[i].ID < m.pending[j].ID
	})
	e := m.pending[0]
	return &e, nil
}

func (m *memStore) MoveToHistory(_ context.Context, e reminder.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.moveErr != nil {
		return m.moveErr
	}
	m.history = append(m.history, e)
	for i, p := range m.pending {
		if p.ID == e.ID {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			break
		}
	}
	return nil
}

type fired struct {
	message string
	repeat  int
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []fired
}

func (r *recordingNotifier) Display(message string, repeat int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fired{message, repeat})
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestLoop(store Store, n Notifier, now time.Time, opts ...Option) *Loop {
	opts = append([]Option{WithClock(fixedClock(now)), WithLogger(logger.Discard())}, opts...)
	return New(store, n, time.Second, opts...)
}

func TestTickNothingPending(t *testing.T) {
	n := &recordingNotifier{}
	l := newTestLoop(&memStore{}, n, time.Now())

	count, err := l.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, n.count())
}

func TestTickNotDue(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	store := &memStore{pending: []reminder.Entry{
		{ID: 1, DueAt: dueat.FromTime(now.Add(time.Second)), Message: "soon", Repeat: 1},
	}}
	n := &recordingNotifier{}

	count, err := newTestLoop(store, n, now).Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, store.pending, 1)
	assert.Empty(t, store.history)
}

func TestTickFiresDueAtExactSecond(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	store := &memStore{pending: []reminder.Entry{
		{ID: 1, DueAt: dueat.FromTime(now), Message: "now", Repeat: 3},
	}}
	n := &recordingNotifier{}

	count, err := newTestLoop(store, n, now).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []fired{{"now", 3}}, n.calls)
	assert.Empty(t, store.pending)
	require.Len(t, store.history, 1)
	assert.Equal(t, int64(1), store.history[0].ID)
}

func TestTickComparesInLocalTime(t *testing.T) {
	// a clock in a zone that differs from the local one
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("UTC+13:30", 13*3600+1800))
	local := now.Local()
	store := &memStore{pending: []reminder.Entry{
		{ID: 1, DueAt: dueat.FromTime(local), Message: "due", Repeat: 1},
		{ID: 2, DueAt: dueat.FromTime(local.Add(time.Second)), Message: "later", Repeat: 1},
	}}
	n := &recordingNotifier{}

	count, err := newTestLoop(store, n, now, WithDrain(true)).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []fired{{"due", 1}}, n.calls)
	require.Len(t, store.pending, 1)
	assert.Equal(t, int64(2), store.pending[0].ID)
}

func TestTickFiresOnlyEarliestByDefault(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	store := &memStore{pending: []reminder.Entry{
		{ID: 1, DueAt: 20250101000000, Message: "later", Repeat: 1},
		{ID: 2, DueAt: 20240101000000, Message: "first", Repeat: 1},
		{ID: 3, DueAt: 20240101000001, Message: "second", Repeat: 1},
	}}
	n := &recordingNotifier{}
	l := newTestLoop(store, n, now)

	count, err := l.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []fired{{"first", 1}}, n.calls)

	count, err = l.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []fired{{"first", 1}, {"second", 1}}, n.calls)

	count, err = l.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTickDrain(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	store := &memStore{pending: []reminder.Entry{
		{ID: 1, DueAt: 20230101000000, Message: "a", Repeat: 1},
		{ID: 2, DueAt: 20230102000000, Message: "b", Repeat: 1},
		{ID: 3, DueAt: 20990101000000, Message: "future", Repeat: 1},
	}}
	n := &recordingNotifier{}

	count, err := newTestLoop(store, n, now, WithDrain(true)).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, store.pending, 1)
	assert.Len(t, store.history, 2)
}

func TestTickStorageErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	_, err := newTestLoop(&memStore{fetchErr: boom}, &recordingNotifier{}, now).Tick(context.Background())
	require.ErrorIs(t, err, boom)

	store := &memStore{
		pending: []reminder.Entry{{ID: 1, DueAt: 20230101000000, Message: "a", Repeat: 1}},
		moveErr: boom,
	}
	n := &recordingNotifier{}
	_, err = newTestLoop(store, n, now).Tick(context.Background())
	require.ErrorIs(t, err, boom)
	// notification already went out; the entry stays pending and fires again
	assert.Equal(t, 1, n.count())
	assert.Len(t, store.pending, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New(&memStore{}, &recordingNotifier{}, 5*time.Millisecond, WithLogger(logger.Discard()))

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReturnsStorageError(t *testing.T) {
	boom := errors.New("locked")
	l := New(&memStore{fetchErr: boom}, &recordingNotifier{}, time.Millisecond, WithLogger(logger.Discard()))

	err := l.Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRunRejectsZeroInterval(t *testing.T) {
	l := New(&memStore{}, &recordingNotifier{}, 0, WithLogger(logger.Discard()))
	assert.Error(t, l.Run(context.Background()))
}

func TestEndToEndAfterFiveSeconds(t *testing.T) {
	ctx := context.Background()
	store, err := reminder.NewStore(filepath.Join(t.TempDir(), "reminder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	submitted := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	svc := reminder.NewService(store, 1, time.Minute,
		reminder.WithClock(fixedClock(submitted)), reminder.WithLogger(logger.Discard()))

	e, err := svc.Submit(ctx, reminder.Submission{Message: "stand up", After: "5s", Repeat: 1})
	require.NoError(t, err)

	n := &recordingNotifier{}

	early, err := newTestLoop(store, n, submitted.Add(4*time.Second)).Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, early)

	count, err := newTestLoop(store, n, submitted.Add(5*time.Second)).Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []fired{{"stand up", 1}}, n.calls)

	pending, err := store.List(ctx, reminder.Pending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	history, err := store.List(ctx, reminder.History)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, e.DueAt, history[0].DueAt)
	assert.Equal(t, "stand up", history[0].Message)

	again, err := newTestLoop(store, n, submitted.Add(time.Hour)).Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)
	assert.Equal(t, 1, n.count())
}

type countingRecorder struct {
	mu           sync.Mutex
	fired        int
	tickFailed   int
	sent         int
	notifyFailed int
}

func (c *countingRecorder) ReminderFired()      { c.mu.Lock(); c.fired++; c.mu.Unlock() }
func (c *countingRecorder) TickFailed()         { c.mu.Lock(); c.tickFailed++; c.mu.Unlock() }
func (c *countingRecorder) NotificationSent()   { c.mu.Lock(); c.sent++; c.mu.Unlock() }
func (c *countingRecorder) NotificationFailed() { c.mu.Lock(); c.notifyFailed++; c.mu.Unlock() }

func TestRecorderSeesFiresAndFailures(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	rec := &countingRecorder{}

	store := &memStore{pending: []reminder.Entry{
		{ID: 1, DueAt: 20230101000000, Message: "a", Repeat: 1},
		{ID: 2, DueAt: 20230102000000, Message: "b", Repeat: 1},
	}}
	_, err := newTestLoop(store, &recordingNotifier{}, now, WithDrain(true), WithRecorder(rec)).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rec.fired)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := newTestLoop(&memStore{fetchErr: errors.New("locked")}, &recordingNotifier{}, now, WithRecorder(rec))
	assert.Error(t, l.check(ctx))
	assert.Equal(t, 1, rec.tickFailed)

	s := &countingSender{err: errors.New("no display")}
	r := NewRepeater(s, 0, logger.Discard()).WithRecorder(rec)
	r.Display("x", 2)
	r.Wait()
	assert.Equal(t, 2, rec.notifyFailed)
	assert.Zero(t, rec.sent)
}
