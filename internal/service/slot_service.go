package service

import (
	"fmt"

	"github.com/opsdesk/opsdesk-api/internal/models"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

// SlotKind is what the user chose to place in a grid slot.
type SlotKind string

const (
	SlotKindEvent   SlotKind = "event"
	SlotKindTask    SlotKind = "task"
	SlotKindBlock   SlotKind = "block"
	SlotKindContent SlotKind = "content"
)

// Valid reports whether the kind is one of the placeable kinds.
func (k SlotKind) Valid() bool {
	switch k {
	case SlotKindEvent, SlotKindTask, SlotKindBlock, SlotKindContent:
		return true
	}
	return false
}

// SlotDraftRequest identifies the clicked slot. Hour is omitted for day cells
// in the week and month views.
type SlotDraftRequest struct {
	Date string `json:"date" validate:"required,day"`
	Hour *int   `json:"hour" validate:"omitempty"`
	Kind string `json:"kind" validate:"required"`
}

// SlotDraft is the pre-filled form payload for the clicked slot. Nothing is
// persisted until the owner submits the form through the normal create path.
type SlotDraft struct {
	Kind  SlotKind            `json:"kind"`
	Event *CreateEventRequest `json:"event,omitempty"`
	Task  *CreateTaskRequest  `json:"task,omitempty"`
}

// SlotService turns grid slot clicks into create-form drafts.
type SlotService struct{}

// NewSlotService constructs the slot service.
func NewSlotService() *SlotService {
	return &SlotService{}
}

// Draft builds the pre-filled payload for a slot click. Timed kinds land on
// the hour; a click without an hour drafts an all-day item. The hour must lie
// within the visible working window.
func (s *SlotService) Draft(req SlotDraftRequest) (*SlotDraft, error) {
	day, err := timegrid.ParseDay(req.Date)
	if err != nil {
		return nil, err
	}

	kind := SlotKind(req.Kind)
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown slot kind")
	}

	var startTime *string
	if req.Hour != nil {
		hour := *req.Hour
		if hour < timegrid.FirstHour || hour > timegrid.LastHour {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("hour must be between %d and %d", timegrid.FirstHour, timegrid.LastHour))
		}
		clock := fmt.Sprintf("%02d:00", hour)
		startTime = &clock
	}

	if kind == SlotKindTask {
		date := string(day)
		return &SlotDraft{
			Kind: kind,
			Task: &CreateTaskRequest{
				StartDate: &date,
				StartTime: startTime,
				Priority:  string(models.PriorityMedium),
			},
		}, nil
	}

	event := &CreateEventRequest{
		StartDate: string(day),
		StartTime: startTime,
	}
	switch kind {
	case SlotKindBlock:
		event.EventType = string(models.EventTypeWorkBlock)
	case SlotKindContent:
		event.EventType = string(models.EventTypeContent)
		event.ContentStatus = stringPtr(string(models.ContentStatusDraft))
	default:
		event.EventType = string(models.EventTypeMeeting)
	}
	return &SlotDraft{Kind: kind, Event: event}, nil
}

func stringPtr(s string) *string {
	return &s
}
