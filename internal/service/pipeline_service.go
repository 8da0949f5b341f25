package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/opsdesk/opsdesk-api/internal/models"
	"github.com/opsdesk/opsdesk-api/internal/repository"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
)

type contentRepository interface {
	ListContent(ctx context.Context, ownerID string) ([]models.Event, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Event, error)
	UpdateContentStatus(ctx context.Context, ownerID, id string, status models.ContentStatus) error
}

// PipelineService drives content-mode events through their workflow states.
// Content items are ordinary events; this service only ever touches their
// status column.
type PipelineService struct {
	events contentRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewPipelineService constructs the pipeline service.
func NewPipelineService(events contentRepository, cache *CacheService, logger *zap.Logger) *PipelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineService{events: events, cache: cache, logger: logger}
}

// BoardColumn is one status lane of the content board.
type BoardColumn struct {
	Status models.ContentStatus `json:"status"`
	Items  []models.Event       `json:"items"`
}

// Board groups the owner's content events into status columns, in workflow
// order. Every column is present even when empty.
func (s *PipelineService) Board(ctx context.Context, ownerID string) ([]BoardColumn, error) {
	events, err := s.events.ListContent(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content board")
	}

	statuses := models.ContentStatuses()
	columns := make([]BoardColumn, len(statuses))
	index := make(map[models.ContentStatus]int, len(statuses))
	for i, status := range statuses {
		columns[i] = BoardColumn{Status: status, Items: []models.Event{}}
		index[status] = i
	}

	for _, event := range events {
		details, ok := event.Content()
		if !ok {
			continue
		}
		i, known := index[details.Status]
		if !known {
			s.logger.Warn("content event with unknown status",
				zap.String("event_id", event.ID), zap.String("status", string(details.Status)))
			continue
		}
		columns[i].Items = append(columns[i].Items, event)
	}
	return columns, nil
}

// TransitionRequest names the target workflow state.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,content_status"`
}

// Transition moves a content event to the requested status. Any status can
// move to any other, including moving published work back to draft. The write
// is a single guarded update, so a failure leaves the stored status unchanged.
func (s *PipelineService) Transition(ctx context.Context, ownerID, eventID string, target models.ContentStatus) (*models.Event, error) {
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown content status")
	}

	err := s.events.UpdateContentStatus(ctx, ownerID, eventID, target)
	if errors.Is(err, repository.ErrNoRowsAffected) {
		// Either the event does not exist for this owner or it is not a
		// content event. Distinguish for the caller.
		event, getErr := s.events.GetByID(ctx, ownerID, eventID)
		if errors.Is(getErr, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		if getErr != nil {
			return nil, appErrors.Wrap(getErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
		}
		if !event.IsContent() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "event is not a content item")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content status")
	}

	if s.cache != nil && s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "cal:"+ownerID+":*"); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}

	event, err := s.events.GetByID(ctx, ownerID, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload event")
	}
	return event, nil
}
