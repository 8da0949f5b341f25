package icsfeed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//example//feed//EN
BEGIN:VEVENT
UID:evt-timed@example.com
SUMMARY:Quarterly review
DESCRIPTION:Numbers and next steps
LOCATION:Room 4
DTSTART:20250310T093000Z
DTEND:20250310T103000Z
END:VEVENT
BEGIN:VEVENT
UID:evt-allday@example.com
SUMMARY:Company holiday
DTSTART;VALUE=DATE:20250312
DTEND;VALUE=DATE:20250313
END:VEVENT
BEGIN:VEVENT
SUMMARY:No UID, must be skipped
DTSTART:20250311T120000Z
END:VEVENT
END:VCALENDAR
`

func icsBody() []byte {
	return []byte(strings.ReplaceAll(sampleFeed, "\n", "\r\n"))
}

func TestParseTimedEvent(t *testing.T) {
	events, err := Parse(icsBody())
	require.NoError(t, err)
	require.Len(t, events, 2, "the UID-less VEVENT is dropped")

	timed := events[0]
	assert.Equal(t, "evt-timed@example.com", timed.UID)
	assert.Equal(t, "Quarterly review", timed.Title)
	assert.Equal(t, "Numbers and next steps", timed.Description)
	assert.Equal(t, "Room 4", timed.Location)
	assert.Equal(t, "2025-03-10", timed.StartDate)
	assert.Equal(t, "09:30", timed.StartTime)
	assert.False(t, timed.AllDay)
	assert.Equal(t, 60, timed.Duration)
}

func TestParseAllDayEvent(t *testing.T) {
	events, err := Parse(icsBody())
	require.NoError(t, err)

	allDay := events[1]
	assert.Equal(t, "evt-allday@example.com", allDay.UID)
	assert.True(t, allDay.AllDay)
	assert.Equal(t, "2025-03-12", allDay.StartDate)
	assert.Empty(t, allDay.StartTime)
}

func TestParseRejectsEmptyBody(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)
}
