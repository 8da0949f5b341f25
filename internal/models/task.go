package models

import (
	"time"

	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

// TaskPriority ranks a task's urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work with an optional due date. Undated tasks exist and
// are excluded from day views.
type Task struct {
	ID          string        `db:"id" json:"id"`
	OwnerID     string        `db:"owner_id" json:"owner_id"`
	Title       string        `db:"title" json:"title"`
	Description string        `db:"description" json:"description"`
	StartDate   *timegrid.Day `db:"start_date" json:"start_date,omitempty"`
	StartTime   *string       `db:"start_time" json:"start_time,omitempty"`
	Priority    TaskPriority  `db:"priority" json:"priority"`
	Status      string        `db:"status" json:"status"`
	Completed   bool          `db:"completed" json:"completed"`
	OrderIndex  int           `db:"order_index" json:"order_index"`
	ProjectID   *string       `db:"project_id" json:"project_id,omitempty"`
	AssigneeID  *string       `db:"assignee_id" json:"assignee_id,omitempty"`
	Duration    *int          `db:"duration_minutes" json:"duration_minutes,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// TimeKey is the normalized agenda sort key for the task.
func (t *Task) TimeKey() string {
	if t.StartTime == nil || *t.StartTime == "" {
		return EndOfDayKey
	}
	return *t.StartTime
}
