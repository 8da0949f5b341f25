package models

import "time"

// IntegrationStatus is the bridge connection state persisted per owner.
// "syncing" is a transient in-memory sub-state of connected and is never
// written to the row.
type IntegrationStatus string

const (
	IntegrationDisconnected IntegrationStatus = "disconnected"
	IntegrationConnecting   IntegrationStatus = "connecting"
	IntegrationConnected    IntegrationStatus = "connected"
)

// CalendarIntegration records an owner's connection to the external
// calendar provider.
type CalendarIntegration struct {
	ID           string            `db:"id" json:"id"`
	OwnerID      string            `db:"owner_id" json:"owner_id"`
	Provider     string            `db:"provider" json:"provider"`
	FeedURL      string            `db:"feed_url" json:"feed_url"`
	Credential   string            `db:"credential" json:"-"`
	Status       IntegrationStatus `db:"status" json:"status"`
	LastSyncedAt *time.Time        `db:"last_synced_at" json:"last_synced_at,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// SyncResult summarises one reconciliation pass.
type SyncResult struct {
	// Skipped is true when the request was dropped because a sync for the
	// same owner was already in flight.
	Skipped bool `json:"skipped"`
	Fetched int  `json:"fetched"`
	Created int  `json:"created"`
	Updated int  `json:"updated"`
	Deleted int  `json:"deleted"`
	Syncing bool `json:"syncing"`
}
