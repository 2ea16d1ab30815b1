package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letiantian/reminder/internal/dueat"
)

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	return NewService(newTestStore(t), 1, 120*time.Second, WithClock(func() time.Time { return now }))
}

func TestSubmitAfter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	svc := newTestService(t, now)

	e, err := svc.Submit(ctx, Submission{Message: "tea", After: "12h3m5s"})
	require.NoError(t, err)
	assert.Equal(t, dueat.DueAt(20240101120305), e.DueAt)
	assert.Equal(t, 1, e.Repeat)

	stored, err := svc.Store().EarliestPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, *e, *stored)
}

func TestSubmitDefaultsToNow(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	svc := newTestService(t, now)

	e, err := svc.Submit(context.Background(), Submission{Message: "now", Repeat: 4})
	require.NoError(t, err)
	assert.Equal(t, dueat.FromTime(now), e.DueAt)
	assert.Equal(t, 4, e.Repeat)
}

func TestSubmitMissingMessage(t *testing.T) {
	svc := newTestService(t, time.Now())

	for _, msg := range []string{"", "   ", "\xff\xfe"} {
		_, err := svc.Submit(context.Background(), Submission{Message: msg})
		assert.ErrorIs(t, err, ErrMissingMessage)
	}
}

func TestSubmitParseErrorsDoNotInsert(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))

	_, err := svc.Submit(ctx, Submission{Message: "x", When: "2M30D"})
	assert.ErrorIs(t, err, ErrInvalidDateTime)

	_, err = svc.Submit(ctx, Submission{Message: "x", After: "later"})
	assert.ErrorIs(t, err, ErrInvalidTimeExpression)

	n, err := svc.Store().Count(ctx, Pending)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitNormalizesMessage(t *testing.T) {
	svc := newTestService(t, time.Now())

	// "e" + combining acute composes to U+00E9; the stray byte is dropped.
	e, err := svc.Submit(context.Background(), Submission{Message: "cafe\u0301\xff"})
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", e.Message)
}

func TestClean(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	svc := newTestService(t, now)
	store := svc.Store()

	// older than the 120s grace window
	_, err := store.Insert(ctx, Pending, dueat.FromTime(now.Add(-10*time.Minute)), "stale", 1)
	require.NoError(t, err)
	// inside the grace window, still waiting for the next poll
	_, err = store.Insert(ctx, Pending, dueat.FromTime(now.Add(-time.Minute)), "recent", 1)
	require.NoError(t, err)
	_, err = store.Insert(ctx, Pending, dueat.FromTime(now.Add(time.Hour)), "future", 1)
	require.NoError(t, err)
	_, err = store.Insert(ctx, History, dueat.FromTime(now.Add(-time.Hour)), "fired", 1)
	require.NoError(t, err)

	res, err := svc.Clean(ctx)
	require.NoError(t, err)
	assert.Equal(t, CleanResult{PurgedPending: 1, ClearedHistory: 1}, res)

	pending, err := store.List(ctx, Pending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "recent", pending[0].Message)
	assert.Equal(t, "future", pending[1].Message)

	res, err = svc.Clean(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.ClearedHistory)
}
