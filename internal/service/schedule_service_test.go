package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opsdesk/opsdesk-api/internal/models"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

type mockEventRepo struct {
	events    map[string]*models.Event
	listed    []models.Event
	createErr error
	updateErr error
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*models.Event)}
}

func (m *mockEventRepo) ListOn(_ context.Context, _ string, _ timegrid.Day) ([]models.Event, error) {
	return m.listed, nil
}

func (m *mockEventRepo) GetByID(_ context.Context, _, id string) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (m *mockEventRepo) Create(_ context.Context, event *models.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	if event.ID == "" {
		event.ID = "event-" + event.Title
	}
	copied := *event
	m.events[event.ID] = &copied
	return nil
}

func (m *mockEventRepo) Update(_ context.Context, event *models.Event) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *event
	m.events[event.ID] = &copied
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, _, id string) error {
	delete(m.events, id)
	return nil
}

type mockTaskRepo struct {
	tasks   map[string]*models.Task
	listed  []models.Task
	overdue []models.Task
	stats   *models.CalendarStats
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]*models.Task)}
}

func (m *mockTaskRepo) ListOn(_ context.Context, _ string, _ timegrid.Day) ([]models.Task, error) {
	return m.listed, nil
}

func (m *mockTaskRepo) ListOverdue(_ context.Context, _ string, _ timegrid.Day) ([]models.Task, error) {
	return m.overdue, nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, _, id string) (*models.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *task
	return &copied, nil
}

func (m *mockTaskRepo) Create(_ context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = "task-" + task.Title
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepo) Update(_ context.Context, task *models.Task) error {
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, _, id string) error {
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) Stats(_ context.Context, _ string, _ timegrid.Day) (*models.CalendarStats, error) {
	copied := *m.stats
	return &copied, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.store = nil
	return nil
}

func newScheduleService(events *mockEventRepo, tasks *mockTaskRepo) *ScheduleService {
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	return NewScheduleService(events, tasks, cacheSvc, nil, zap.NewNop())
}

func TestScheduleServiceCreateEventRejectsBlankTitle(t *testing.T) {
	svc := newScheduleService(newMockEventRepo(), newMockTaskRepo())

	_, err := svc.CreateEvent(context.Background(), "owner-1", CreateEventRequest{
		Title:     "   ",
		StartDate: "2026-03-10",
		EventType: "meeting",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleServiceCreateEventDefaults(t *testing.T) {
	repo := newMockEventRepo()
	svc := newScheduleService(repo, newMockTaskRepo())

	event, err := svc.CreateEvent(context.Background(), "owner-1", CreateEventRequest{
		Title:     "Standup",
		StartDate: "2026-03-10",
		EventType: "meeting",
	})
	require.NoError(t, err)
	assert.True(t, event.AllDay)
	assert.Nil(t, event.StartTime)
	assert.Equal(t, 60, event.Duration)
	assert.Equal(t, models.SourceLocal, event.Source)
	assert.Equal(t, timegrid.Day("2026-03-10"), event.StartDate)
}

func TestScheduleServiceCreateEventTimedIsNotAllDay(t *testing.T) {
	svc := newScheduleService(newMockEventRepo(), newMockTaskRepo())

	start := "09:30"
	event, err := svc.CreateEvent(context.Background(), "owner-1", CreateEventRequest{
		Title:     "Call",
		StartDate: "2026-03-10",
		StartTime: &start,
		EventType: "call",
	})
	require.NoError(t, err)
	assert.False(t, event.AllDay)
	require.NotNil(t, event.StartTime)
	assert.Equal(t, "09:30", *event.StartTime)
}

func TestScheduleServiceCreateEventContentDefaultsToDraft(t *testing.T) {
	svc := newScheduleService(newMockEventRepo(), newMockTaskRepo())

	event, err := svc.CreateEvent(context.Background(), "owner-1", CreateEventRequest{
		Title:     "Launch video",
		StartDate: "2026-03-12",
		EventType: "content",
	})
	require.NoError(t, err)
	require.NotNil(t, event.ContentStatus)
	assert.Equal(t, models.ContentStatusDraft, *event.ContentStatus)
}

func TestScheduleServiceCreateEventRejectsContentFieldsOnPlainEvent(t *testing.T) {
	svc := newScheduleService(newMockEventRepo(), newMockTaskRepo())

	channel := "youtube"
	_, err := svc.CreateEvent(context.Background(), "owner-1", CreateEventRequest{
		Title:          "Standup",
		StartDate:      "2026-03-10",
		EventType:      "meeting",
		ContentChannel: &channel,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceUpdateEventClearingStartTimeMakesAllDay(t *testing.T) {
	repo := newMockEventRepo()
	svc := newScheduleService(repo, newMockTaskRepo())

	start := "10:00"
	created, err := svc.CreateEvent(context.Background(), "owner-1", CreateEventRequest{
		Title:     "Review",
		StartDate: "2026-03-10",
		StartTime: &start,
		EventType: "meeting",
	})
	require.NoError(t, err)

	cleared := ""
	updated, err := svc.UpdateEvent(context.Background(), "owner-1", created.ID, UpdateEventRequest{StartTime: &cleared})
	require.NoError(t, err)
	assert.True(t, updated.AllDay)
	assert.Nil(t, updated.StartTime)
}

func TestScheduleServiceUpdateEventNotFound(t *testing.T) {
	svc := newScheduleService(newMockEventRepo(), newMockTaskRepo())

	title := "New title"
	_, err := svc.UpdateEvent(context.Background(), "owner-1", "missing", UpdateEventRequest{Title: &title})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceUpdateEventRejectsEditsOnSyncedEvent(t *testing.T) {
	repo := newMockEventRepo()
	svc := newScheduleService(repo, newMockTaskRepo())

	uid := "uid-1"
	repo.events["ev-ext"] = &models.Event{
		ID:         "ev-ext",
		OwnerID:    "owner-1",
		Title:      "Provider meeting",
		StartDate:  "2026-03-10",
		AllDay:     true,
		Duration:   60,
		EventType:  models.EventTypeMeeting,
		Source:     models.SourceICSFeed,
		ForeignUID: &uid,
	}

	title := "Locally rewritten"
	_, err := svc.UpdateEvent(context.Background(), "owner-1", "ev-ext", UpdateEventRequest{Title: &title})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "Provider meeting", repo.events["ev-ext"].Title)

	color := "#f59e0b"
	updated, err := svc.UpdateEvent(context.Background(), "owner-1", "ev-ext", UpdateEventRequest{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#f59e0b", updated.Color)
	assert.Equal(t, "Provider meeting", updated.Title)
}

func TestScheduleServiceUpdateEventTypeChangeClearsContentFields(t *testing.T) {
	repo := newMockEventRepo()
	svc := newScheduleService(repo, newMockTaskRepo())

	channel := "youtube"
	created, err := svc.CreateEvent(context.Background(), "owner-1", CreateEventRequest{
		Title:          "Launch video",
		StartDate:      "2026-03-12",
		EventType:      "content",
		ContentChannel: &channel,
	})
	require.NoError(t, err)
	require.NotNil(t, created.ContentStatus)

	meeting := "meeting"
	updated, err := svc.UpdateEvent(context.Background(), "owner-1", created.ID, UpdateEventRequest{EventType: &meeting})
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeMeeting, updated.EventType)
	assert.Nil(t, updated.ContentStatus)
	assert.Nil(t, updated.ContentChannel)
	assert.Nil(t, updated.ContentAssetType)
}

func TestScheduleServiceDeleteEventIsIdempotent(t *testing.T) {
	repo := newMockEventRepo()
	svc := newScheduleService(repo, newMockTaskRepo())

	created, err := svc.CreateEvent(context.Background(), "owner-1", CreateEventRequest{
		Title:     "Standup",
		StartDate: "2026-03-10",
		EventType: "meeting",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(context.Background(), "owner-1", created.ID))
	require.NoError(t, svc.DeleteEvent(context.Background(), "owner-1", created.ID))
	require.NoError(t, svc.DeleteEvent(context.Background(), "owner-1", "never-existed"))
}

func TestScheduleServiceToggleTaskFlipsCompletion(t *testing.T) {
	tasks := newMockTaskRepo()
	svc := newScheduleService(newMockEventRepo(), tasks)

	date := "2026-03-10"
	created, err := svc.CreateTask(context.Background(), "owner-1", CreateTaskRequest{
		Title:     "Invoice batch",
		StartDate: &date,
	})
	require.NoError(t, err)
	assert.False(t, created.Completed)
	assert.Equal(t, models.PriorityMedium, created.Priority)

	toggled, err := svc.ToggleTask(context.Background(), "owner-1", created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	require.NotNil(t, toggled.StartDate)
	assert.Equal(t, timegrid.Day(date), *toggled.StartDate)

	back, err := svc.ToggleTask(context.Background(), "owner-1", created.ID)
	require.NoError(t, err)
	assert.False(t, back.Completed)
}

func TestScheduleServiceStatsRounding(t *testing.T) {
	tasks := newMockTaskRepo()
	tasks.stats = &models.CalendarStats{Total: 3, Completed: 1, Pending: 2}
	svc := newScheduleService(newMockEventRepo(), tasks)

	stats, err := svc.Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 33, stats.CompletionRate)
}

func TestScheduleServiceStatsEmptyCollection(t *testing.T) {
	tasks := newMockTaskRepo()
	tasks.stats = &models.CalendarStats{}
	svc := newScheduleService(newMockEventRepo(), tasks)

	stats, err := svc.Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.CompletionRate)
}
