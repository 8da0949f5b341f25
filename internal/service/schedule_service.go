package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/opsdesk/opsdesk-api/internal/models"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

const (
	defaultEventDuration = 60
	defaultEventColor    = "#3b82f6"
)

type eventRepository interface {
	ListOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Event, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, ownerID, id string) error
}

type taskRepository interface {
	ListOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Task, error)
	ListOverdue(ctx context.Context, ownerID string, before timegrid.Day) ([]models.Task, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, ownerID, id string) error
	Stats(ctx context.Context, ownerID string, today timegrid.Day) (*models.CalendarStats, error)
}

// ScheduleService owns the canonical event and task collections. All other
// components read through its queries and write through its mutations; none
// of them holds the underlying rows.
type ScheduleService struct {
	events    eventRepository
	tasks     taskRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService constructs the service.
func NewScheduleService(events eventRepository, tasks taskRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ScheduleService{events: events, tasks: tasks, cache: cache, validator: validate, logger: logger, now: time.Now}
	registerEnumValidators(svc.validator)
	return svc
}

func registerEnumValidators(v *validator.Validate) {
	_ = v.RegisterValidation("event_type", func(fl validator.FieldLevel) bool {
		return models.EventType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
		return models.TaskPriority(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("content_status", func(fl validator.FieldLevel) bool {
		return models.ContentStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("day", func(fl validator.FieldLevel) bool {
		_, err := timegrid.ParseDay(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
}

// CreateEventRequest describes the event create payload.
type CreateEventRequest struct {
	Title            string  `json:"title" validate:"required"`
	Description      string  `json:"description"`
	StartDate        string  `json:"start_date" validate:"required,day"`
	StartTime        *string `json:"start_time" validate:"omitempty,clock"`
	Duration         *int    `json:"duration_minutes" validate:"omitempty,min=1"`
	EventType        string  `json:"event_type" validate:"required,event_type"`
	Color            string  `json:"color"`
	Location         *string `json:"location"`
	ContentStatus    *string `json:"content_status" validate:"omitempty,content_status"`
	ContentChannel   *string `json:"content_channel"`
	ContentAssetType *string `json:"content_asset_type"`
}

// UpdateEventRequest is a partial patch; nil fields are left untouched.
type UpdateEventRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=1"`
	Description      *string `json:"description"`
	StartDate        *string `json:"start_date" validate:"omitempty,day"`
	StartTime        *string `json:"start_time" validate:"omitempty,clock"`
	Duration         *int    `json:"duration_minutes" validate:"omitempty,min=1"`
	EventType        *string `json:"event_type" validate:"omitempty,event_type"`
	Color            *string `json:"color"`
	Location         *string `json:"location"`
	ContentStatus    *string `json:"content_status" validate:"omitempty,content_status"`
	ContentChannel   *string `json:"content_channel"`
	ContentAssetType *string `json:"content_asset_type"`
}

// CreateTaskRequest describes the task create payload.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	StartDate   *string `json:"start_date" validate:"omitempty,day"`
	StartTime   *string `json:"start_time" validate:"omitempty,clock"`
	Priority    string  `json:"priority" validate:"omitempty,task_priority"`
	Status      string  `json:"status"`
	OrderIndex  *int    `json:"order_index"`
	ProjectID   *string `json:"project_id"`
	AssigneeID  *string `json:"assignee_id"`
	Duration    *int    `json:"duration_minutes" validate:"omitempty,min=1"`
}

// UpdateTaskRequest is a partial patch; nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date" validate:"omitempty,day"`
	StartTime   *string `json:"start_time" validate:"omitempty,clock"`
	Priority    *string `json:"priority" validate:"omitempty,task_priority"`
	Status      *string `json:"status"`
	Completed   *bool   `json:"completed"`
	OrderIndex  *int    `json:"order_index"`
	ProjectID   *string `json:"project_id"`
	AssigneeID  *string `json:"assignee_id"`
	Duration    *int    `json:"duration_minutes" validate:"omitempty,min=1"`
}

// CreateEvent validates and stores a locally authored event.
func (s *ScheduleService) CreateEvent(ctx context.Context, ownerID string, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title must not be blank")
	}

	eventType := models.EventType(req.EventType)
	if eventType != models.EventTypeContent && (req.ContentStatus != nil || req.ContentChannel != nil || req.ContentAssetType != nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "content fields are only valid for content events")
	}

	duration := defaultEventDuration
	if req.Duration != nil {
		duration = *req.Duration
	}
	color := req.Color
	if color == "" {
		color = defaultEventColor
	}

	event := &models.Event{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   timegrid.Day(req.StartDate),
		StartTime:   req.StartTime,
		AllDay:      req.StartTime == nil,
		Duration:    duration,
		EventType:   eventType,
		Color:       color,
		Location:    req.Location,
		Source:      models.SourceLocal,
	}
	if eventType == models.EventTypeContent {
		status := models.ContentStatusDraft
		if req.ContentStatus != nil {
			status = models.ContentStatus(*req.ContentStatus)
		}
		event.ContentStatus = &status
		event.ContentChannel = req.ContentChannel
		event.ContentAssetType = req.ContentAssetType
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.invalidate(ctx, ownerID)
	return event, nil
}

// UpdateEvent applies a partial patch to an event. Last write wins at the
// field level; there is no version check.
func (s *ScheduleService) UpdateEvent(ctx context.Context, ownerID, id string, req UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event patch")
	}

	event, err := s.events.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	// Mirrored feed rows belong to the sync pass. The only local edits
	// allowed on them are display color and content status.
	if event.Source == models.SourceICSFeed && patchesBridgeOwnedFields(req) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "externally synced events can only change color or content status")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title must not be blank")
		}
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartDate != nil {
		event.StartDate = timegrid.Day(*req.StartDate)
	}
	if req.StartTime != nil {
		event.StartTime = req.StartTime
		event.AllDay = *req.StartTime == ""
		if event.AllDay {
			event.StartTime = nil
		}
	}
	if req.Duration != nil {
		event.Duration = *req.Duration
	}
	if req.EventType != nil {
		event.EventType = models.EventType(*req.EventType)
		if !event.IsContent() {
			event.ContentStatus = nil
			event.ContentChannel = nil
			event.ContentAssetType = nil
		}
	}
	if req.Color != nil {
		event.Color = *req.Color
	}
	if req.Location != nil {
		event.Location = req.Location
	}
	if req.ContentStatus != nil || req.ContentChannel != nil || req.ContentAssetType != nil {
		if !event.IsContent() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "content fields are only valid for content events")
		}
		if req.ContentStatus != nil {
			status := models.ContentStatus(*req.ContentStatus)
			event.ContentStatus = &status
		}
		if req.ContentChannel != nil {
			event.ContentChannel = req.ContentChannel
		}
		if req.ContentAssetType != nil {
			event.ContentAssetType = req.ContentAssetType
		}
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.invalidate(ctx, ownerID)
	return event, nil
}

func patchesBridgeOwnedFields(req UpdateEventRequest) bool {
	return req.Title != nil || req.Description != nil || req.StartDate != nil ||
		req.StartTime != nil || req.Duration != nil || req.EventType != nil ||
		req.Location != nil || req.ContentChannel != nil || req.ContentAssetType != nil
}

// DeleteEvent removes an event. Deleting a nonexistent id succeeds: the UI
// may race a double-click and the second delete must not surface an error.
func (s *ScheduleService) DeleteEvent(ctx context.Context, ownerID, id string) error {
	if err := s.events.Delete(ctx, ownerID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.invalidate(ctx, ownerID)
	return nil
}

// GetEvent returns a single event.
func (s *ScheduleService) GetEvent(ctx context.Context, ownerID, id string) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get event")
	}
	return event, nil
}

// EventsOn returns the owner's events for an exact calendar date.
func (s *ScheduleService) EventsOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Event, error) {
	events, err := s.events.ListOn(ctx, ownerID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// CreateTask validates and stores a task.
func (s *ScheduleService) CreateTask(ctx context.Context, ownerID string, req CreateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title must not be blank")
	}

	priority := models.PriorityMedium
	if req.Priority != "" {
		priority = models.TaskPriority(req.Priority)
	}
	orderIndex := 0
	if req.OrderIndex != nil {
		orderIndex = *req.OrderIndex
	}

	task := &models.Task{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartTime:   req.StartTime,
		Priority:    priority,
		Status:      req.Status,
		Completed:   false,
		OrderIndex:  orderIndex,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		Duration:    req.Duration,
	}
	if req.StartDate != nil {
		day := timegrid.Day(*req.StartDate)
		task.StartDate = &day
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	s.invalidate(ctx, ownerID)
	return task, nil
}

// UpdateTask applies a partial patch to a task.
func (s *ScheduleService) UpdateTask(ctx context.Context, ownerID, id string, req UpdateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task patch")
	}

	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title must not be blank")
		}
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.StartDate != nil {
		if *req.StartDate == "" {
			task.StartDate = nil
		} else {
			day := timegrid.Day(*req.StartDate)
			task.StartDate = &day
		}
	}
	if req.StartTime != nil {
		task.StartTime = req.StartTime
	}
	if req.Priority != nil {
		task.Priority = models.TaskPriority(*req.Priority)
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Completed != nil {
		// Completing a task keeps its start_date; only the flag flips.
		task.Completed = *req.Completed
	}
	if req.OrderIndex != nil {
		task.OrderIndex = *req.OrderIndex
	}
	if req.ProjectID != nil {
		task.ProjectID = req.ProjectID
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	if req.Duration != nil {
		task.Duration = req.Duration
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}
	s.invalidate(ctx, ownerID)
	return task, nil
}

// ToggleTask flips the completed flag, the single mutation path behind the
// agenda checkbox.
func (s *ScheduleService) ToggleTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	completed := !task.Completed
	return s.UpdateTask(ctx, ownerID, id, UpdateTaskRequest{Completed: &completed})
}

// DeleteTask removes a task; missing ids are a successful no-op.
func (s *ScheduleService) DeleteTask(ctx context.Context, ownerID, id string) error {
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	s.invalidate(ctx, ownerID)
	return nil
}

// GetTask returns a single task.
func (s *ScheduleService) GetTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get task")
	}
	return task, nil
}

// TasksOn returns the owner's tasks for an exact calendar date.
func (s *ScheduleService) TasksOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Task, error) {
	tasks, err := s.tasks.ListOn(ctx, ownerID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return tasks, nil
}

// OverdueBefore returns incomplete tasks dated strictly before the given
// day, oldest first. Completed tasks keep their start_date but are never
// overdue.
func (s *ScheduleService) OverdueBefore(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Task, error) {
	tasks, err := s.tasks.ListOverdue(ctx, ownerID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list overdue tasks")
	}
	return tasks, nil
}

// Stats aggregates the owner's task collection. The completion rate is a
// rounded percentage and 0 when there are no tasks at all.
func (s *ScheduleService) Stats(ctx context.Context, ownerID string) (*models.CalendarStats, error) {
	today := timegrid.Today(s.now())
	stats, err := s.tasks.Stats(ctx, ownerID, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute stats")
	}
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats, nil
}

func (s *ScheduleService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("cal:%s:*", ownerID)); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}
