package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk-api/internal/models"
)

var taskTestColumns = []string{
	"id", "owner_id", "title", "description", "start_date", "start_time", "priority", "status", "completed",
	"order_index", "project_id", "assignee_id", "duration_minutes", "created_at", "updated_at",
}

func TestTaskRepositoryListOverdue(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTaskRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(taskTestColumns).
		AddRow("tk-1", "owner-1", "Chase invoice", "", time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), nil, "high", "", false,
			0, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, title")).
		WithArgs("owner-1", "2026-03-10").
		WillReturnRows(rows)

	tasks, err := repo.ListOverdue(context.Background(), "owner-1", "2026-03-10")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].StartDate)
	require.Equal(t, "2026-03-07", string(*tasks[0].StartDate))
	require.False(t, tasks[0].Completed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryGetByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTaskRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, title")).
		WithArgs("owner-1", "tk-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "owner-1", "tk-404")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryCreateAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTaskRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	task := &models.Task{
		OwnerID:  "owner-1",
		Title:    "Invoice batch",
		Priority: models.PriorityMedium,
	}
	require.NoError(t, repo.Create(context.Background(), task))
	require.NotEmpty(t, task.ID)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET title")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	task.Completed = true
	require.NoError(t, repo.Update(context.Background(), task))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryStats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTaskRepository(db)
	rows := sqlmock.NewRows([]string{"total", "completed", "pending", "overdue"}).
		AddRow(7, 3, 4, 2)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) AS total")).
		WithArgs("owner-1", "2026-03-10").
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), "owner-1", "2026-03-10")
	require.NoError(t, err)
	require.Equal(t, 7, stats.Total)
	require.Equal(t, 3, stats.Completed)
	require.Equal(t, 4, stats.Pending)
	require.Equal(t, 2, stats.Overdue)
	require.NoError(t, mock.ExpectationsWereMet())
}
