package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opsdesk/opsdesk-api/internal/models"
)

const integrationColumns = `id, owner_id, provider, feed_url, credential, status, last_synced_at, created_at, updated_at`

// IntegrationRepository persists calendar provider connections, one per owner.
type IntegrationRepository struct {
	db *sqlx.DB
}

// NewIntegrationRepository constructs an integration repository.
func NewIntegrationRepository(db *sqlx.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// GetByOwner fetches the owner's integration row.
func (r *IntegrationRepository) GetByOwner(ctx context.Context, ownerID string) (*models.CalendarIntegration, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_integrations WHERE owner_id = $1`, integrationColumns)
	var integration models.CalendarIntegration
	if err := r.db.GetContext(ctx, &integration, query, ownerID); err != nil {
		return nil, err
	}
	return &integration, nil
}

// Upsert creates or replaces the owner's integration.
func (r *IntegrationRepository) Upsert(ctx context.Context, integration *models.CalendarIntegration) error {
	if integration.ID == "" {
		integration.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if integration.CreatedAt.IsZero() {
		integration.CreatedAt = now
	}
	integration.UpdatedAt = now
	query := `INSERT INTO calendar_integrations (id, owner_id, provider, feed_url, credential, status, last_synced_at, created_at, updated_at)
VALUES (:id, :owner_id, :provider, :feed_url, :credential, :status, :last_synced_at, :created_at, :updated_at)
ON CONFLICT (owner_id) DO UPDATE SET provider = EXCLUDED.provider, feed_url = EXCLUDED.feed_url,
credential = EXCLUDED.credential, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, integration); err != nil {
		return fmt.Errorf("upsert integration: %w", err)
	}
	return nil
}

// SetStatus updates the persisted connection state.
func (r *IntegrationRepository) SetStatus(ctx context.Context, ownerID string, status models.IntegrationStatus) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE calendar_integrations SET status = $1, updated_at = $2 WHERE owner_id = $3`,
		status, time.Now().UTC(), ownerID); err != nil {
		return fmt.Errorf("set integration status: %w", err)
	}
	return nil
}

// MarkSynced stamps a successful reconciliation pass.
func (r *IntegrationRepository) MarkSynced(ctx context.Context, ownerID string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE calendar_integrations SET last_synced_at = $1, updated_at = $1 WHERE owner_id = $2`,
		at.UTC(), ownerID); err != nil {
		return fmt.Errorf("mark integration synced: %w", err)
	}
	return nil
}

// ListConnected returns every connected integration, used by the scheduled
// auto-sync pass.
func (r *IntegrationRepository) ListConnected(ctx context.Context) ([]models.CalendarIntegration, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_integrations WHERE status = $1`, integrationColumns)
	var integrations []models.CalendarIntegration
	if err := r.db.SelectContext(ctx, &integrations, query, models.IntegrationConnected); err != nil {
		return nil, fmt.Errorf("list connected integrations: %w", err)
	}
	return integrations, nil
}
