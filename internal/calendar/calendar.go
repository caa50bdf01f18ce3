// Package calendar provides the NYSE trading calendar: holidays,
// session hours, and cache-currency checks used by the returns layer.
package calendar

import (
	"time"

	"github.com/quantterm/backend/internal/contracts"
)

// Regular and extended session bounds, minutes from midnight ET.
// 정규장 09:30–16:00, 확장 04:00–20:00
const (
	regularOpenMin  = 9*60 + 30
	regularCloseMin = 16 * 60
	extendedOpenMin = 4 * 60
	extendedCloseMn = 20 * 60
)

var nyseLocation *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// tzdata missing; fall back to fixed EST. DST transitions will
		// be off by an hour but trading-day logic stays correct.
		loc = time.FixedZone("EST", -5*3600)
	}
	nyseLocation = loc
}

// Location returns the NYSE timezone.
func Location() *time.Location {
	return nyseLocation
}

// easterSunday computes Easter for a year (anonymous Gregorian
// algorithm). Needed for Good Friday.
func easterSunday(year int) contracts.Day {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return contracts.NewDay(year, time.Month(month), day)
}

// nthWeekday returns the nth given weekday of a month (n is 1-based).
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) contracts.Day {
	first := contracts.NewDay(year, month, 1)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDays(offset + 7*(n-1))
}

// lastWeekday returns the last given weekday of a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) contracts.Day {
	var next contracts.Day
	if month == time.December {
		next = contracts.NewDay(year+1, time.January, 1)
	} else {
		next = contracts.NewDay(year, month+1, 1)
	}
	last := next.AddDays(-1)
	back := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDays(-back)
}

// observed shifts weekend holidays: Saturday observes Friday, Sunday
// observes Monday.
func observed(d contracts.Day) contracts.Day {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(1)
	}
	return d
}

// Holidays returns the NYSE holiday set for a year.
func Holidays(year int) map[contracts.Day]struct{} {
	h := make(map[contracts.Day]struct{}, 10)
	add := func(d contracts.Day) { h[d] = struct{}{} }

	add(observed(contracts.NewDay(year, time.January, 1)))            // New Year's Day
	add(nthWeekday(year, time.January, time.Monday, 3))               // MLK Day
	add(nthWeekday(year, time.February, time.Monday, 3))              // Presidents' Day
	add(easterSunday(year).AddDays(-2))                               // Good Friday
	add(lastWeekday(year, time.May, time.Monday))                     // Memorial Day
	add(observed(contracts.NewDay(year, time.June, 19)))              // Juneteenth
	add(observed(contracts.NewDay(year, time.July, 4)))               // Independence Day
	add(nthWeekday(year, time.September, time.Monday, 1))             // Labor Day
	add(nthWeekday(year, time.November, time.Thursday, 4))            // Thanksgiving
	add(observed(contracts.NewDay(year, time.December, 25)))          // Christmas

	return h
}

// IsTradingDay reports whether NYSE trades on the given day.
func IsTradingDay(d contracts.Day) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := Holidays(d.Time().Year())[d]
	return !holiday
}

// PreviousTradingDay returns the most recent trading day strictly
// before d.
func PreviousTradingDay(d contracts.Day) contracts.Day {
	for prev := d.AddDays(-1); ; prev = prev.AddDays(-1) {
		if IsTradingDay(prev) {
			return prev
		}
	}
}

func minutesET(t time.Time) int {
	et := t.In(nyseLocation)
	return et.Hour()*60 + et.Minute()
}

// TodayET returns the calendar date in New York at the given instant.
// DayOf would use the UTC date, which differs during the evening ET.
func TodayET(now time.Time) contracts.Day {
	et := now.In(nyseLocation)
	return contracts.NewDay(et.Year(), et.Month(), et.Day())
}

// HasClosedToday reports whether the regular session has ended (past
// 4 PM ET) at the given instant.
func HasClosedToday(now time.Time) bool {
	return minutesET(now) >= regularCloseMin
}

// IsOpenExtended reports whether NYSE is within extended hours
// (4 AM – 8 PM ET) on a trading day at the given instant.
func IsOpenExtended(now time.Time) bool {
	today := TodayET(now)
	if !IsTradingDay(today) {
		return false
	}
	m := minutesET(now)
	return m >= extendedOpenMin && m <= extendedCloseMn
}

// LastExpectedTradingDay returns the most recent day for which closed
// daily data should exist: today if today's session has closed,
// otherwise the previous trading day.
func LastExpectedTradingDay(now time.Time) contracts.Day {
	today := TodayET(now)
	if IsTradingDay(today) && HasClosedToday(now) {
		return today
	}
	return PreviousTradingDay(today)
}

// IsStockCacheCurrent reports whether a cache whose last bar is
// lastCached still covers every closed session.
func IsStockCacheCurrent(lastCached contracts.Day, now time.Time) bool {
	return !lastCached.Before(LastExpectedTradingDay(now))
}
