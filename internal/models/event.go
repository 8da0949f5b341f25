package models

import (
	"time"

	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

// EventType classifies a scheduled occurrence.
type EventType string

const (
	EventTypeMeeting   EventType = "meeting"
	EventTypeCall      EventType = "call"
	EventTypeDeadline  EventType = "deadline"
	EventTypeWorkBlock EventType = "work-block"
	EventTypeNote      EventType = "note"
	EventTypeContent   EventType = "content"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeMeeting, EventTypeCall, EventTypeDeadline, EventTypeWorkBlock, EventTypeNote, EventTypeContent:
		return true
	}
	return false
}

// EventSource records which system authored an event's content fields.
type EventSource string

const (
	SourceLocal   EventSource = "local"
	SourceICSFeed EventSource = "ics-feed"
)

// ContentStatus is the kanban column of a content event.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusReady     ContentStatus = "ready"
	ContentStatusPublished ContentStatus = "published"
)

// Valid reports whether s is a known content status.
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusReady, ContentStatusPublished:
		return true
	}
	return false
}

// ContentStatuses lists the pipeline columns in board order.
func ContentStatuses() []ContentStatus {
	return []ContentStatus{ContentStatusDraft, ContentStatusReady, ContentStatusPublished}
}

// Event is a time-bound occurrence on the unified calendar.
type Event struct {
	ID          string       `db:"id" json:"id"`
	OwnerID     string       `db:"owner_id" json:"owner_id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	StartDate   timegrid.Day `db:"start_date" json:"start_date"`
	StartTime   *string      `db:"start_time" json:"start_time,omitempty"`
	AllDay      bool         `db:"all_day" json:"all_day"`
	Duration    int          `db:"duration_minutes" json:"duration_minutes"`
	EventType   EventType    `db:"event_type" json:"event_type"`
	Color       string       `db:"color" json:"color"`
	Location    *string      `db:"location" json:"location,omitempty"`
	Source      EventSource  `db:"source" json:"source"`
	ForeignUID  *string      `db:"foreign_uid" json:"foreign_uid,omitempty"`

	// Content fields are populated only when EventType is content.
	ContentStatus    *ContentStatus `db:"content_status" json:"content_status,omitempty"`
	ContentChannel   *string        `db:"content_channel" json:"content_channel,omitempty"`
	ContentAssetType *string        `db:"content_asset_type" json:"content_asset_type,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ContentDetails carries the content-only attributes of an event.
type ContentDetails struct {
	Status    ContentStatus `json:"status"`
	Channel   string        `json:"channel"`
	AssetType string        `json:"asset_type"`
	// Platform is the publishing target, carried in the event's location field.
	Platform string `json:"platform"`
}

// IsContent reports whether the event participates in the content pipeline.
func (e *Event) IsContent() bool {
	return e.EventType == EventTypeContent
}

// Content returns the content attributes, or ok=false for non-content events
// so the pipeline cannot accidentally read them elsewhere.
func (e *Event) Content() (ContentDetails, bool) {
	if !e.IsContent() {
		return ContentDetails{}, false
	}
	details := ContentDetails{Status: ContentStatusDraft}
	if e.ContentStatus != nil {
		details.Status = *e.ContentStatus
	}
	if e.ContentChannel != nil {
		details.Channel = *e.ContentChannel
	}
	if e.ContentAssetType != nil {
		details.AssetType = *e.ContentAssetType
	}
	if e.Location != nil {
		details.Platform = *e.Location
	}
	return details, true
}

// TimeKey is the normalized agenda sort key for the event: the time of day,
// or the end-of-day sentinel for all-day events.
func (e *Event) TimeKey() string {
	if e.AllDay || e.StartTime == nil || *e.StartTime == "" {
		return EndOfDayKey
	}
	return *e.StartTime
}
