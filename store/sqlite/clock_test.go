package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sales-grid/grid"
)

func storeAt(t *testing.T, now time.Time) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.now = func() time.Time { return now }
	return s
}

func sessionExpiring(id string, expiresAt time.Time) grid.Session {
	day := grid.NewDate(2024, time.January, 1)
	return grid.Session{
		ID:        id,
		Variant:   "delimited_text",
		CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		ExpiresAt: expiresAt,
		Range:     grid.DateRange{Start: day, End: day},
		SKUs:      []string{"A"},
	}
}

func TestGetSession_UsesStoreClock(t *testing.T) {
	// GIVEN: A clock at noon, one session expiring at 11:00 and one at 13:00
	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := storeAt(t, noon)
	ctx := context.Background()
	require.NoError(t, s.SaveSession(ctx, sessionExpiring("old", noon.Add(-time.Hour))))
	require.NoError(t, s.SaveSession(ctx, sessionExpiring("new", noon.Add(time.Hour))))

	// WHEN/THEN: Expiry is judged against the store clock, not the wall clock
	_, err := s.GetSession(ctx, "old")
	assert.ErrorIs(t, err, grid.ErrSessionNotFound)
	got, err := s.GetSession(ctx, "new")
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.Equal(noon.Add(time.Hour)))
}

func TestGetSession_CorruptTimestamps(t *testing.T) {
	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, column := range []string{"created_at", "expires_at"} {
		t.Run(column, func(t *testing.T) {
			// GIVEN: A stored session whose timestamp is not in the stored layout
			s := storeAt(t, noon)
			ctx := context.Background()
			require.NoError(t, s.SaveSession(ctx, sessionExpiring("s1", noon.Add(time.Hour))))
			_, err := s.db.ExecContext(ctx, "UPDATE sessions SET "+column+" = ? WHERE id = ?", "yesterday", "s1")
			require.NoError(t, err)

			// WHEN: Loading it
			_, err = s.GetSession(ctx, "s1")

			// THEN: The load fails instead of yielding a zero time
			require.Error(t, err)
			assert.NotErrorIs(t, err, grid.ErrSessionNotFound)
			assert.Contains(t, err.Error(), "corrupt "+column)
		})
	}
}
