package timegrid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayRejectsGarbage(t *testing.T) {
	_, err := ParseDay("2025/01/02")
	require.Error(t, err)
	_, err = ParseDay("not-a-date")
	require.Error(t, err)

	day, err := ParseDay("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", day.String())
}

func TestWeekDaysStartsMondayAndContainsRef(t *testing.T) {
	refs := []string{
		"2025-03-03", // a Monday
		"2025-03-05", // midweek
		"2025-03-09", // a Sunday
		"2024-12-31", // year boundary
		"2024-02-29", // leap day
	}
	for _, raw := range refs {
		ref := Day(raw)
		week := WeekDays(ref)
		require.Len(t, week, 7, "ref %s", raw)
		assert.Equal(t, 1, week[0].Weekday(), "ref %s should start Monday", raw)
		for i := 1; i < 7; i++ {
			assert.Equal(t, week[i-1].AddDays(1), week[i], "ref %s days must be consecutive", raw)
		}
		assert.False(t, ref.Before(week[0]) || ref.After(week[6]), "ref %s must fall inside its week", raw)
	}
}

func TestMonthGridIsAlwaysSixWeeks(t *testing.T) {
	for _, raw := range []string{"2025-02-14", "2025-03-01", "2024-02-10", "2025-12-31"} {
		cells := MonthGrid(Day(raw))
		require.Len(t, cells, 42, "ref %s", raw)
		assert.Equal(t, 1, cells[0].Day.Weekday(), "grid for %s must start on Monday", raw)

		// The reference month's days form one contiguous run inside the grid.
		first, last := -1, -1
		for i, cell := range cells {
			if cell.InMonth {
				if first == -1 {
					first = i
				}
				last = i
			}
		}
		require.GreaterOrEqual(t, first, 0, "ref %s", raw)
		for i := first; i <= last; i++ {
			assert.True(t, cells[i].InMonth, "ref %s cell %d must belong to the month", raw, i)
		}
	}
}

func TestMonthGridFebruaryLeapYear(t *testing.T) {
	cells := MonthGrid(Day("2024-02-15"))
	inMonth := 0
	for _, cell := range cells {
		if cell.InMonth {
			inMonth++
		}
	}
	assert.Equal(t, 29, inMonth)
}

func TestHourBucketsWindow(t *testing.T) {
	hours := HourBuckets()
	require.Len(t, hours, 13)
	assert.Equal(t, 8, hours[0])
	assert.Equal(t, 20, hours[len(hours)-1])
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 3, DaysBetween(Day("2025-03-01"), Day("2025-03-04")))
	assert.Equal(t, -1, DaysBetween(Day("2025-03-01"), Day("2025-02-28")))
	assert.Equal(t, 0, DaysBetween(Day("2025-03-01"), Day("2025-03-01")))
	// across a DST change in any local zone: civil dates are timezone-free
	assert.Equal(t, 1, DaysBetween(Day("2025-03-30"), Day("2025-03-31")))
}

func TestTodayUsesCalendarDate(t *testing.T) {
	now := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, Day("2025-03-09"), Today(now))
}

func TestDayOrderingIsLexicographic(t *testing.T) {
	assert.True(t, Day("2025-01-31").Before(Day("2025-02-01")))
	assert.True(t, Day("2025-10-01").After(Day("2025-09-30")))
}
