package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sales-grid/grid"
	"github.com/warp/sales-grid/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(d int) grid.Date {
	return grid.NewDate(2024, time.January, d)
}

func completedSession(id string, expiresAt time.Time) grid.Session {
	return grid.Session{
		ID:        id,
		Variant:   "cost_ledger",
		FileName:  "ventas.csv",
		CreatedAt: time.Date(2024, 1, 5, 10, 30, 0, 123, time.UTC),
		ExpiresAt: expiresAt,
		Range:     grid.DateRange{Start: day(1), End: day(2)},
		SKUs:      []string{"A", "B"},
		Warnings: []grid.CellCoercionWarning{
			{Line: 3, Field: "quantity", Value: "bad", Reason: "not a number, counted as 0"},
		},
		Result: []grid.ResultRow{
			{Date: day(1), SKU: "A", Quantity: decimal.RequireFromString("2.5"), Cost: decimal.NewFromInt(10)},
			{Date: day(1), SKU: "B", Quantity: decimal.Zero, Cost: decimal.Zero, Filled: true},
			{Date: day(2), SKU: "A", Quantity: decimal.Zero, Cost: decimal.Zero, Filled: true},
			{Date: day(2), SKU: "B", Quantity: decimal.NewFromInt(4), Cost: decimal.RequireFromString("7.25")},
		},
	}
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestStore_SaveAndGet_RoundTrip(t *testing.T) {
	// GIVEN: A completed session
	store := newTestStore(t)
	ctx := context.Background()
	sess := completedSession("s1", time.Now().Add(time.Hour))

	// WHEN: Saving and loading it
	require.NoError(t, store.SaveSession(ctx, sess))
	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)

	// THEN: Everything comes back, rows in date/SKU order
	assert.Equal(t, sess.Variant, got.Variant)
	assert.Equal(t, sess.FileName, got.FileName)
	assert.Equal(t, sess.Range, got.Range)
	assert.Equal(t, sess.SKUs, got.SKUs)
	assert.Equal(t, sess.Warnings, got.Warnings)
	assert.True(t, sess.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	require.Len(t, got.Result, 4)
	for i, want := range sess.Result {
		assert.Equal(t, want.Key(), got.Result[i].Key())
		assert.True(t, want.Quantity.Equal(got.Result[i].Quantity), "quantity %d", i)
		assert.True(t, want.Cost.Equal(got.Result[i].Cost), "cost %d", i)
		assert.Equal(t, want.Filled, got.Result[i].Filled)
	}
}

func TestStore_GetUnknown(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSession(context.Background(), "nope")

	assert.ErrorIs(t, err, grid.ErrSessionNotFound)
}

func TestStore_SaveReplacesRows(t *testing.T) {
	// GIVEN: A stored session
	store := newTestStore(t)
	ctx := context.Background()
	sess := completedSession("s1", time.Time{})
	require.NoError(t, store.SaveSession(ctx, sess))

	// WHEN: Saving it again with an edited cost
	sess.Result[3].Cost = decimal.NewFromInt(100)
	sess.Edited = true
	require.NoError(t, store.SaveSession(ctx, sess))

	// THEN: One session, same number of rows, new cost
	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Edited)
	require.Len(t, got.Result, 4)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Result[3].Cost))

	n, err := store.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// =============================================================================
// EXPIRY
// =============================================================================

func TestStore_ExpiredSessionNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, completedSession("old", time.Now().Add(-time.Minute))))

	_, err := store.GetSession(ctx, "old")

	assert.ErrorIs(t, err, grid.ErrSessionNotFound)
}

func TestStore_PurgeExpired(t *testing.T) {
	// GIVEN: One expired, one live and one session without expiry
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveSession(ctx, completedSession("expired", now.Add(-time.Second))))
	require.NoError(t, store.SaveSession(ctx, completedSession("live", now.Add(time.Hour))))
	require.NoError(t, store.SaveSession(ctx, completedSession("forever", time.Time{})))

	// WHEN: Purging at now
	n, err := store.PurgeExpired(ctx, now)

	// THEN: Only the expired one goes
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	count, err := store.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_DeleteCascadesRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, completedSession("s1", time.Time{})))

	require.NoError(t, store.DeleteSession(ctx, "s1"))

	_, err := store.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, grid.ErrSessionNotFound)

	// Re-saving under the same id must not collide with orphaned rows
	assert.NoError(t, store.SaveSession(ctx, completedSession("s1", time.Time{})))
}
