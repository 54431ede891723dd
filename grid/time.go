package grid

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day (the grid has daily granularity)
// =============================================================================

// Date is a calendar day in UTC. Always build it with NewDate, ParseDate or
// DateOf so that two equal days compare equal with == and can key maps.
type Date struct {
	Time time.Time
}

// DateLayout is the canonical text form of a Date.
const DateLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses s with a Go layout and truncates it to the day.
func ParseDate(layout, s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) IsZero() bool                  { return d.Time.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Time.AddDate(0, 0, n)) }

func (d Date) String() string { return d.Time.Format(DateLayout) }

// Format renders the date with an arbitrary Go layout.
func (d Date) Format(layout string) string { return d.Time.Format(layout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	*d = parsed
	return nil
}

// DaysBetween counts calendar days from one date to another (to - from).
// Exact for spans longer than a time.Duration can hold (~292 years).
func DaysBetween(from, to Date) int {
	return int((to.Time.Unix() - from.Time.Unix()) / 86400)
}

// =============================================================================
// DATE RANGE - Inclusive [Start, End]
// =============================================================================

// DateRange is the span of observed sale dates.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// RangeOf returns the smallest range containing every date.
// ok is false when dates is empty.
func RangeOf(dates []Date) (r DateRange, ok bool) {
	if len(dates) == 0 {
		return DateRange{}, false
	}
	r = DateRange{Start: dates[0], End: dates[0]}
	for _, d := range dates[1:] {
		if d.Before(r.Start) {
			r.Start = d
		}
		if d.After(r.End) {
			r.End = d
		}
	}
	return r, true
}

// Contains returns true if d is within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Len is the number of calendar days in the range, both ends included.
func (r DateRange) Len() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return DaysBetween(r.Start, r.End) + 1
}

// Days returns every day in the range in ascending order.
func (r DateRange) Days() []Date {
	days := make([]Date, 0, r.Len())
	for current := r.Start; current.BeforeOrEqual(r.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
