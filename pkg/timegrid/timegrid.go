// Package timegrid provides the pure calendar arithmetic behind the week,
// month and hour views. Dates are civil calendar dates with no time zone:
// Day is a zero-padded YYYY-MM-DD string, so lexicographic order is
// chronological order and equality is plain string equality.
package timegrid

import (
	"time"

	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
)

const dayLayout = "2006-01-02"

// Visible scheduling window in the hour grid. Entries outside it remain
// queryable through the agenda, they just have no hour cell.
const (
	FirstHour = 8
	LastHour  = 20
)

// Day is a civil calendar date.
type Day string

// ParseDay validates raw as a YYYY-MM-DD date.
func ParseDay(raw string) (Day, error) {
	if _, err := time.Parse(dayLayout, raw); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return Day(raw), nil
}

// FromTime truncates t to its calendar date.
func FromTime(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// Today resolves the current calendar date from a clock reading.
func Today(now time.Time) Day {
	return FromTime(now)
}

func (d Day) String() string {
	return string(d)
}

// IsZero reports whether the day is unset.
func (d Day) IsZero() bool {
	return d == ""
}

// Time returns the midnight instant of the day in UTC. Only used internally
// for arithmetic; callers never see instants.
func (d Day) Time() time.Time {
	t, _ := time.Parse(dayLayout, string(d))
	return t
}

// AddDays returns the day shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly before other.
func (d Day) Before(other Day) bool {
	return string(d) < string(other)
}

// After reports whether d is strictly after other.
func (d Day) After(other Day) bool {
	return string(d) > string(other)
}

// DaysBetween returns the number of whole days from d to other.
// Positive when other is later than d.
func DaysBetween(d, other Day) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// Weekday returns the ISO weekday of d, Monday=1 .. Sunday=7.
func (d Day) Weekday() int {
	wd := int(d.Time().Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekDays returns the 7 days of the ISO week containing ref, Monday first.
func WeekDays(ref Day) []Day {
	monday := ref.AddDays(-(ref.Weekday() - 1))
	days := make([]Day, 7)
	for i := range days {
		days[i] = monday.AddDays(i)
	}
	return days
}

// MonthCell is one cell of the 6x7 month grid.
type MonthCell struct {
	Day     Day  `json:"day"`
	InMonth bool `json:"in_month"`
}

// MonthGrid returns the 42-cell month view for the month containing ref.
// The grid starts at the Monday on or before the 1st and always spans six
// full weeks, so leading and trailing cells belong to adjacent months and
// are flagged InMonth=false.
func MonthGrid(ref Day) []MonthCell {
	t := ref.Time()
	first := FromTime(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
	start := first.AddDays(-(first.Weekday() - 1))

	month := t.Month()
	cells := make([]MonthCell, 42)
	for i := range cells {
		day := start.AddDays(i)
		cells[i] = MonthCell{Day: day, InMonth: day.Time().Month() == month}
	}
	return cells
}

// HourBuckets returns the visible hour rows of the day grid.
func HourBuckets() []int {
	hours := make([]int, 0, LastHour-FirstHour+1)
	for h := FirstHour; h <= LastHour; h++ {
		hours = append(hours, h)
	}
	return hours
}
