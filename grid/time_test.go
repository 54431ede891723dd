package grid_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sales-grid/grid"
)

func TestDate_Comparable(t *testing.T) {
	a := grid.DateOf(time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC))
	b, err := grid.ParseDate("2/1/2006", "2/1/2024")
	require.NoError(t, err)

	assert.True(t, a == b, "same day must compare equal with ==")
	assert.Equal(t, jan(2), a)
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(jan(7))
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-07"`, string(b))

	var d grid.Date
	require.NoError(t, json.Unmarshal(b, &d))
	assert.Equal(t, jan(7), d)

	assert.Error(t, json.Unmarshal([]byte(`"07/01/2024"`), &d))
}

func TestDateRange(t *testing.T) {
	r, ok := grid.RangeOf([]grid.Date{jan(5), jan(2), jan(9), jan(2)})
	require.True(t, ok)

	assert.Equal(t, jan(2), r.Start)
	assert.Equal(t, jan(9), r.End)
	assert.Equal(t, 8, r.Len())
	assert.Len(t, r.Days(), 8)
	assert.Equal(t, jan(3), r.Days()[1])
	assert.True(t, r.Contains(jan(9)))
	assert.False(t, r.Contains(jan(10)))
	assert.Equal(t, "[2024-01-02, 2024-01-09]", r.String())

	_, ok = grid.RangeOf(nil)
	assert.False(t, ok)
}

func TestDateRange_AcrossMonthAndLeapDay(t *testing.T) {
	r := grid.DateRange{
		Start: grid.NewDate(2024, time.February, 27),
		End:   grid.NewDate(2024, time.March, 2),
	}

	days := r.Days()

	require.Len(t, days, 5)
	assert.Equal(t, "2024-02-29", days[2].String())
}

func TestDateRange_Centuries(t *testing.T) {
	// GIVEN: A range spanning more than three centuries, as a mistyped year produces
	r := grid.DateRange{
		Start: grid.NewDate(1700, time.January, 1),
		End:   grid.NewDate(2024, time.January, 1),
	}

	// WHEN/THEN: The length counts every day
	assert.Equal(t, 118339, r.Len())
	assert.Len(t, r.Days(), r.Len())
	assert.Equal(t, -118338, grid.DaysBetween(r.End, r.Start))
}
