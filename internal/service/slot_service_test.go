package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk-api/internal/models"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
)

func intPtr(i int) *int { return &i }

func TestSlotDraftTimedEvent(t *testing.T) {
	svc := NewSlotService()

	draft, err := svc.Draft(SlotDraftRequest{Date: "2026-03-10", Hour: intPtr(9), Kind: "event"})
	require.NoError(t, err)
	require.NotNil(t, draft.Event)
	assert.Nil(t, draft.Task)
	assert.Equal(t, "2026-03-10", draft.Event.StartDate)
	require.NotNil(t, draft.Event.StartTime)
	assert.Equal(t, "09:00", *draft.Event.StartTime)
	assert.Equal(t, string(models.EventTypeMeeting), draft.Event.EventType)
}

func TestSlotDraftDayCellIsAllDay(t *testing.T) {
	draft, err := NewSlotService().Draft(SlotDraftRequest{Date: "2026-03-10", Kind: "event"})
	require.NoError(t, err)
	require.NotNil(t, draft.Event)
	assert.Nil(t, draft.Event.StartTime)
}

func TestSlotDraftBlockAndContentKinds(t *testing.T) {
	svc := NewSlotService()

	block, err := svc.Draft(SlotDraftRequest{Date: "2026-03-10", Hour: intPtr(14), Kind: "block"})
	require.NoError(t, err)
	assert.Equal(t, string(models.EventTypeWorkBlock), block.Event.EventType)

	content, err := svc.Draft(SlotDraftRequest{Date: "2026-03-10", Hour: intPtr(14), Kind: "content"})
	require.NoError(t, err)
	assert.Equal(t, string(models.EventTypeContent), content.Event.EventType)
	require.NotNil(t, content.Event.ContentStatus)
	assert.Equal(t, string(models.ContentStatusDraft), *content.Event.ContentStatus)
}

func TestSlotDraftTask(t *testing.T) {
	draft, err := NewSlotService().Draft(SlotDraftRequest{Date: "2026-03-10", Hour: intPtr(10), Kind: "task"})
	require.NoError(t, err)
	require.NotNil(t, draft.Task)
	assert.Nil(t, draft.Event)
	require.NotNil(t, draft.Task.StartDate)
	assert.Equal(t, "2026-03-10", *draft.Task.StartDate)
	assert.Equal(t, string(models.PriorityMedium), draft.Task.Priority)
}

func TestSlotDraftRejectsOutOfWindowHour(t *testing.T) {
	svc := NewSlotService()

	for _, hour := range []int{7, 21, -1} {
		_, err := svc.Draft(SlotDraftRequest{Date: "2026-03-10", Hour: intPtr(hour), Kind: "event"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestSlotDraftRejectsUnknownKindAndBadDate(t *testing.T) {
	svc := NewSlotService()

	_, err := svc.Draft(SlotDraftRequest{Date: "2026-03-10", Kind: "reminder"})
	require.Error(t, err)

	_, err = svc.Draft(SlotDraftRequest{Date: "03/10/2026", Kind: "event"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
