package contracts

import (
	"fmt"
	"time"
)

// dayLayout is the canonical wire/storage format for calendar dates.
const dayLayout = "2006-01-02"

// Day is a calendar date normalized to UTC midnight.
// ⭐ SSOT: 날짜 비교는 전부 Day 기준 (timezone/시간 성분 제거)
//
// Price candles and transaction timestamps arrive with arbitrary time
// components and zones; collapsing both to Day is what makes the
// weight/return date intersection line up.
type Day struct {
	t time.Time
}

// DayOf collapses any timestamp to its UTC calendar date.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return Day{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// NewDay builds a Day from year/month/day components.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a "YYYY-MM-DD" string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Time returns the underlying UTC midnight instant.
func (d Day) Time() time.Time {
	return d.t
}

// Unix returns the UTC midnight instant as a unix timestamp (seconds).
func (d Day) Unix() int64 {
	return d.t.Unix()
}

func (d Day) String() string {
	return d.t.Format(dayLayout)
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return d.t.After(other.t)
}

// AddDays returns the day n calendar days later (negative n allowed).
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// Sub returns the number of whole calendar days from other to d.
func (d Day) Sub(other Day) int {
	return int(d.t.Sub(other.t).Hours() / 24)
}

// Weekday returns the day of the week.
func (d Day) Weekday() time.Weekday {
	return d.t.Weekday()
}

// MarshalJSON encodes as "YYYY-MM-DD".
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes "YYYY-MM-DD" (also accepts RFC3339 timestamps
// for compatibility with older ledger files).
func (d *Day) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date JSON: %s", s)
	}
	s = s[1 : len(s)-1]

	if parsed, err := ParseDay(s); err == nil {
		*d = parsed
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = DayOf(t)
	return nil
}

// MarshalText implements encoding.TextMarshaler so Day can be used as a
// JSON map key.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(data []byte) error {
	parsed, err := ParseDay(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns every calendar day from start to end inclusive,
// in ascending order. Returns nil when start is after end.
func DaysBetween(start, end Day) []Day {
	if start.After(end) {
		return nil
	}
	days := make([]Day, 0, end.Sub(start)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
