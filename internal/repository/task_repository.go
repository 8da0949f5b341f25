package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opsdesk/opsdesk-api/internal/models"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

// ErrNoRowsAffected signals a write that matched no row.
var ErrNoRowsAffected = errors.New("no rows affected")

const taskColumns = `id, owner_id, title, description, start_date, start_time, priority, status, completed,
order_index, project_id, assignee_id, duration_minutes, created_at, updated_at`

// TaskRepository persists tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a task repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListOn returns the owner's tasks due on an exact calendar date.
func (r *TaskRepository) ListOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE owner_id = $1 AND start_date = $2
ORDER BY start_time ASC NULLS LAST, order_index ASC, created_at ASC`, taskColumns)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, ownerID, day); err != nil {
		return nil, fmt.Errorf("list tasks on %s: %w", day, err)
	}
	return tasks, nil
}

// ListOverdue returns incomplete tasks dated strictly before the given day,
// oldest first.
func (r *TaskRepository) ListOverdue(ctx context.Context, ownerID string, before timegrid.Day) ([]models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks
WHERE owner_id = $1 AND completed = FALSE AND start_date IS NOT NULL AND start_date < $2
ORDER BY start_date ASC, created_at ASC`, taskColumns)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, ownerID, before); err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return tasks, nil
}

// GetByID fetches a single task scoped to its owner.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE owner_id = $1 AND id = $2`, taskColumns)
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, ownerID, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create inserts a task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	query := `INSERT INTO tasks (id, owner_id, title, description, start_date, start_time, priority, status, completed,
order_index, project_id, assignee_id, duration_minutes, created_at, updated_at)
VALUES (:id, :owner_id, :title, :description, :start_date, :start_time, :priority, :status, :completed,
:order_index, :project_id, :assignee_id, :duration_minutes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update rewrites a task row. Same full-row, last-write-wins contract as
// events.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	query := `UPDATE tasks SET title = :title, description = :description, start_date = :start_date,
start_time = :start_time, priority = :priority, status = :status, completed = :completed,
order_index = :order_index, project_id = :project_id, assignee_id = :assignee_id,
duration_minutes = :duration_minutes, updated_at = :updated_at
WHERE id = :id AND owner_id = :owner_id`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Delete removes a task. Deleting a missing id is a no-op.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1 AND owner_id = $2", id, ownerID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Stats aggregates the owner's full task collection in one query. Overdue
// counts incomplete tasks dated strictly before today; undated tasks are
// never overdue.
func (r *TaskRepository) Stats(ctx context.Context, ownerID string, today timegrid.Day) (*models.CalendarStats, error) {
	const query = `SELECT
COUNT(*) AS total,
COUNT(*) FILTER (WHERE completed) AS completed,
COUNT(*) FILTER (WHERE NOT completed) AS pending,
COUNT(*) FILTER (WHERE NOT completed AND start_date IS NOT NULL AND start_date < $2) AS overdue
FROM tasks WHERE owner_id = $1`
	var stats models.CalendarStats
	if err := r.db.GetContext(ctx, &stats, query, ownerID, today); err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	return &stats, nil
}
