package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opsdesk/opsdesk-api/internal/models"
	"github.com/opsdesk/opsdesk-api/internal/repository"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
)

type mockContentRepo struct {
	items     map[string]*models.Event
	updateErr error
}

func newMockContentRepo() *mockContentRepo {
	return &mockContentRepo{items: make(map[string]*models.Event)}
}

func (m *mockContentRepo) add(id string, status models.ContentStatus) *models.Event {
	event := &models.Event{
		ID:            id,
		OwnerID:       "owner-1",
		Title:         "Item " + id,
		StartDate:     "2026-03-10",
		EventType:     models.EventTypeContent,
		ContentStatus: &status,
	}
	m.items[id] = event
	return event
}

func (m *mockContentRepo) ListContent(_ context.Context, _ string) ([]models.Event, error) {
	out := make([]models.Event, 0, len(m.items))
	for _, event := range m.items {
		out = append(out, *event)
	}
	return out, nil
}

func (m *mockContentRepo) GetByID(_ context.Context, _, id string) (*models.Event, error) {
	event, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (m *mockContentRepo) UpdateContentStatus(_ context.Context, _, id string, status models.ContentStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	event, ok := m.items[id]
	if !ok || event.EventType != models.EventTypeContent {
		return repository.ErrNoRowsAffected
	}
	event.ContentStatus = &status
	return nil
}

func newPipeline(repo *mockContentRepo) *PipelineService {
	return NewPipelineService(repo, nil, zap.NewNop())
}

func TestPipelineBoardBucketsByStatus(t *testing.T) {
	repo := newMockContentRepo()
	repo.add("c-1", models.ContentStatusDraft)
	repo.add("c-2", models.ContentStatusReady)
	repo.add("c-3", models.ContentStatusPublished)
	repo.add("c-4", models.ContentStatusDraft)

	columns, err := newPipeline(repo).Board(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, models.ContentStatusDraft, columns[0].Status)
	assert.Len(t, columns[0].Items, 2)
	assert.Equal(t, models.ContentStatusReady, columns[1].Status)
	assert.Len(t, columns[1].Items, 1)
	assert.Equal(t, models.ContentStatusPublished, columns[2].Status)
	assert.Len(t, columns[2].Items, 1)
}

func TestPipelineBoardEmptyColumnsPresent(t *testing.T) {
	columns, err := newPipeline(newMockContentRepo()).Board(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, columns, 3)
	for _, column := range columns {
		assert.NotNil(t, column.Items)
		assert.Empty(t, column.Items)
	}
}

func TestPipelineTransitionAnyDirection(t *testing.T) {
	repo := newMockContentRepo()
	repo.add("c-1", models.ContentStatusPublished)
	svc := newPipeline(repo)

	// Pulling published work back to draft is allowed.
	event, err := svc.Transition(context.Background(), "owner-1", "c-1", models.ContentStatusDraft)
	require.NoError(t, err)
	require.NotNil(t, event.ContentStatus)
	assert.Equal(t, models.ContentStatusDraft, *event.ContentStatus)
}

func TestPipelineTransitionRejectsNonContentEvent(t *testing.T) {
	repo := newMockContentRepo()
	repo.items["ev-1"] = &models.Event{
		ID:        "ev-1",
		OwnerID:   "owner-1",
		Title:     "Standup",
		StartDate: "2026-03-10",
		EventType: models.EventTypeMeeting,
	}

	_, err := newPipeline(repo).Transition(context.Background(), "owner-1", "ev-1", models.ContentStatusReady)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPipelineTransitionUnknownEvent(t *testing.T) {
	_, err := newPipeline(newMockContentRepo()).Transition(context.Background(), "owner-1", "missing", models.ContentStatusReady)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPipelineTransitionFailureLeavesStatusUnchanged(t *testing.T) {
	repo := newMockContentRepo()
	repo.add("c-1", models.ContentStatusDraft)
	repo.updateErr = errors.New("connection reset")
	svc := newPipeline(repo)

	_, err := svc.Transition(context.Background(), "owner-1", "c-1", models.ContentStatusPublished)
	require.Error(t, err)

	require.NotNil(t, repo.items["c-1"].ContentStatus)
	assert.Equal(t, models.ContentStatusDraft, *repo.items["c-1"].ContentStatus)
}

func TestPipelineTransitionRejectsUnknownStatus(t *testing.T) {
	repo := newMockContentRepo()
	repo.add("c-1", models.ContentStatusDraft)

	_, err := newPipeline(repo).Transition(context.Background(), "owner-1", "c-1", models.ContentStatus("archived"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
