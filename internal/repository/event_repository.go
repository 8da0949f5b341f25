package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opsdesk/opsdesk-api/internal/models"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

const eventColumns = `id, owner_id, title, description, start_date, start_time, all_day, duration_minutes,
event_type, color, location, source, foreign_uid, content_status, content_channel, content_asset_type,
created_at, updated_at`

// EventRepository persists calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListOn returns the owner's events on an exact calendar date, timed entries
// first in time-of-day order.
func (r *EventRepository) ListOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE owner_id = $1 AND start_date = $2
ORDER BY all_day ASC, start_time ASC NULLS LAST, created_at ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, ownerID, day); err != nil {
		return nil, fmt.Errorf("list events on %s: %w", day, err)
	}
	return events, nil
}

// ListContent returns the owner's content-typed events for the pipeline board.
func (r *EventRepository) ListContent(ctx context.Context, ownerID string) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE owner_id = $1 AND event_type = $2
ORDER BY start_date ASC, created_at ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, ownerID, models.EventTypeContent); err != nil {
		return nil, fmt.Errorf("list content events: %w", err)
	}
	return events, nil
}

// GetByID fetches a single event scoped to its owner.
func (r *EventRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE owner_id = $1 AND id = $2`, eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, ownerID, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	query := `INSERT INTO events (id, owner_id, title, description, start_date, start_time, all_day, duration_minutes,
event_type, color, location, source, foreign_uid, content_status, content_channel, content_asset_type, created_at, updated_at)
VALUES (:id, :owner_id, :title, :description, :start_date, :start_time, :all_day, :duration_minutes,
:event_type, :color, :location, :source, :foreign_uid, :content_status, :content_channel, :content_asset_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update rewrites an event row. Callers load the row first and apply their
// patch, so this is a full-row write (last write wins, no version column).
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	query := `UPDATE events SET title = :title, description = :description, start_date = :start_date,
start_time = :start_time, all_day = :all_day, duration_minutes = :duration_minutes, event_type = :event_type,
color = :color, location = :location, content_status = :content_status, content_channel = :content_channel,
content_asset_type = :content_asset_type, updated_at = :updated_at
WHERE id = :id AND owner_id = :owner_id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// UpdateContentStatus writes only the content_status column. The pipeline
// uses this so a transition can never clobber concurrent edits to other
// fields.
func (r *EventRepository) UpdateContentStatus(ctx context.Context, ownerID, id string, status models.ContentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET content_status = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4 AND event_type = $5`,
		status, time.Now().UTC(), id, ownerID, models.EventTypeContent)
	if err != nil {
		return fmt.Errorf("update content status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update content status: %w", err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// Delete removes an event. Deleting a missing id is a no-op.
func (r *EventRepository) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1 AND owner_id = $2", id, ownerID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ReconcileExternal applies the provider's current event set in a single
// transaction: matched rows (by foreign_uid) are overwritten with the
// provider's content fields, unmatched incoming rows are inserted, and
// previously-synced rows absent from the incoming set are deleted. Rows
// with source=local are never touched. On any failure the transaction
// rolls back and the local store is unchanged.
func (r *EventRepository) ReconcileExternal(ctx context.Context, ownerID string, incoming []models.Event) (created, updated, deleted int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("begin reconcile: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existing []models.Event
	query := fmt.Sprintf(`SELECT %s FROM events WHERE owner_id = $1 AND source = $2`, eventColumns)
	if err := tx.SelectContext(ctx, &existing, query, ownerID, models.SourceICSFeed); err != nil {
		return 0, 0, 0, fmt.Errorf("load external events: %w", err)
	}

	byUID := make(map[string]models.Event, len(existing))
	for _, event := range existing {
		if event.ForeignUID != nil {
			byUID[*event.ForeignUID] = event
		}
	}

	seen := make(map[string]struct{}, len(incoming))
	now := time.Now().UTC()

	for _, in := range incoming {
		if in.ForeignUID == nil || *in.ForeignUID == "" {
			continue
		}
		seen[*in.ForeignUID] = struct{}{}

		current, ok := byUID[*in.ForeignUID]
		if !ok {
			in.ID = uuid.NewString()
			in.OwnerID = ownerID
			in.Source = models.SourceICSFeed
			in.CreatedAt = now
			in.UpdatedAt = now
			insert := `INSERT INTO events (id, owner_id, title, description, start_date, start_time, all_day, duration_minutes,
event_type, color, location, source, foreign_uid, content_status, content_channel, content_asset_type, created_at, updated_at)
VALUES (:id, :owner_id, :title, :description, :start_date, :start_time, :all_day, :duration_minutes,
:event_type, :color, :location, :source, :foreign_uid, :content_status, :content_channel, :content_asset_type, :created_at, :updated_at)`
			if _, err := tx.NamedExecContext(ctx, insert, &in); err != nil {
				return 0, 0, 0, fmt.Errorf("insert synced event %s: %w", *in.ForeignUID, err)
			}
			created++
			continue
		}

		// Provider is authoritative for its own events' content fields.
		// content_status stays local: it is the one field edited on our side.
		update := `UPDATE events SET title = :title, description = :description, start_date = :start_date,
start_time = :start_time, all_day = :all_day, duration_minutes = :duration_minutes, event_type = :event_type,
location = :location, updated_at = :updated_at
WHERE id = :id AND owner_id = :owner_id`
		in.ID = current.ID
		in.OwnerID = ownerID
		in.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, update, &in); err != nil {
			return 0, 0, 0, fmt.Errorf("update synced event %s: %w", *in.ForeignUID, err)
		}
		updated++
	}

	for uid, event := range byUID {
		if _, ok := seen[uid]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = $1 AND owner_id = $2", event.ID, ownerID); err != nil {
			return 0, 0, 0, fmt.Errorf("delete vanished event %s: %w", uid, err)
		}
		deleted++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, 0, fmt.Errorf("commit reconcile: %w", err)
	}
	return created, updated, deleted, nil
}
