package models

import "github.com/opsdesk/opsdesk-api/pkg/timegrid"

// EndOfDayKey sorts entries without a time of day to the end of the agenda.
// "24:00" compares after every real HH:MM value.
const EndOfDayKey = "24:00"

// AgendaEntryKind tags the union members of an agenda.
type AgendaEntryKind string

const (
	AgendaEntryEvent AgendaEntryKind = "event"
	AgendaEntryTask  AgendaEntryKind = "task"
)

// AgendaEntry is one row of a day's merged agenda. Derived per query,
// never persisted.
type AgendaEntry struct {
	Kind  AgendaEntryKind `json:"kind"`
	Time  string          `json:"time"`
	Event *Event          `json:"event,omitempty"`
	Task  *Task           `json:"task,omitempty"`
}

// OverdueTask annotates an incomplete task with its age relative to "today".
type OverdueTask struct {
	Task        Task `json:"task"`
	DaysOverdue int  `json:"days_overdue"`
}

// CalendarStats aggregates the full task collection.
type CalendarStats struct {
	Total          int `db:"total" json:"total"`
	Completed      int `db:"completed" json:"completed"`
	Pending        int `db:"pending" json:"pending"`
	Overdue        int `db:"overdue" json:"overdue"`
	CompletionRate int `json:"completion_rate"`
}

// WeekView is the rendered week grid with its hour rows.
type WeekView struct {
	Days  []timegrid.Day `json:"days"`
	Hours []int          `json:"hours"`
}

// MonthView is the rendered 6x7 month grid.
type MonthView struct {
	Cells []timegrid.MonthCell `json:"cells"`
}
