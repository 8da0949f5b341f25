package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opsdesk/opsdesk-api/internal/models"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/icsfeed"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

const externalEventColor = "#8b5cf6"

// CalendarProvider is the external feed the bridge talks to.
type CalendarProvider interface {
	Authorize(ctx context.Context, feedURL string) (string, error)
	ListEvents(ctx context.Context, feedURL, from, to string) ([]icsfeed.ProviderEvent, error)
}

type integrationRepository interface {
	GetByOwner(ctx context.Context, ownerID string) (*models.CalendarIntegration, error)
	Upsert(ctx context.Context, integration *models.CalendarIntegration) error
	SetStatus(ctx context.Context, ownerID string, status models.IntegrationStatus) error
	MarkSynced(ctx context.Context, ownerID string, at time.Time) error
	ListConnected(ctx context.Context) ([]models.CalendarIntegration, error)
}

type eventReconciler interface {
	ReconcileExternal(ctx context.Context, ownerID string, incoming []models.Event) (created, updated, deleted int, err error)
}

// BridgeServiceConfig tunes the sync pass.
type BridgeServiceConfig struct {
	// SyncHorizon bounds the fetch window on each side of today.
	SyncHorizon time.Duration
}

// BridgeService connects owners to an external calendar feed and mirrors the
// feed's events into the local store. Provider rows are replaced wholesale on
// each pass; local rows are never touched by it.
type BridgeService struct {
	provider     CalendarProvider
	integrations integrationRepository
	events       eventReconciler
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
	cfg          BridgeServiceConfig
	now          func() time.Time

	mu         sync.Mutex
	inFlight   map[string]bool
	autoSynced map[string]bool
}

// NewBridgeService constructs the bridge.
func NewBridgeService(provider CalendarProvider, integrations integrationRepository, events eventReconciler, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg BridgeServiceConfig) *BridgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SyncHorizon <= 0 {
		cfg.SyncHorizon = 60 * 24 * time.Hour
	}
	return &BridgeService{
		provider:     provider,
		integrations: integrations,
		events:       events,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
		inFlight:     make(map[string]bool),
		autoSynced:   make(map[string]bool),
	}
}

// ConnectRequest carries the feed the owner wants mirrored.
type ConnectRequest struct {
	Provider string `json:"provider" validate:"required"`
	FeedURL  string `json:"feed_url" validate:"required,url"`
}

// Connect authorizes against the feed and stores the connection. A prior
// connection for the same owner is replaced.
func (s *BridgeService) Connect(ctx context.Context, ownerID string, req ConnectRequest) (*models.CalendarIntegration, error) {
	credential, err := s.provider.Authorize(ctx, req.FeedURL)
	if err != nil {
		s.logger.Warn("calendar authorize failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrSyncFailed.Code, appErrors.ErrSyncFailed.Status, "could not reach calendar feed")
	}

	integration := &models.CalendarIntegration{
		OwnerID:    ownerID,
		Provider:   req.Provider,
		FeedURL:    req.FeedURL,
		Credential: credential,
		Status:     models.IntegrationConnected,
	}
	if err := s.integrations.Upsert(ctx, integration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store integration")
	}

	s.logger.Info("calendar connected", zap.String("owner_id", ownerID), zap.String("provider", req.Provider))
	return integration, nil
}

// Disconnect marks the integration disconnected. Previously mirrored events
// stay in the local store until the owner deletes them.
func (s *BridgeService) Disconnect(ctx context.Context, ownerID string) error {
	if _, err := s.integration(ctx, ownerID); err != nil {
		return err
	}
	if err := s.integrations.SetStatus(ctx, ownerID, models.IntegrationDisconnected); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to disconnect integration")
	}
	s.logger.Info("calendar disconnected", zap.String("owner_id", ownerID))
	return nil
}

// Status reports the persisted connection state, plus whether a sync pass is
// running right now.
func (s *BridgeService) Status(ctx context.Context, ownerID string) (*models.CalendarIntegration, bool, error) {
	integration, err := s.integrations.GetByOwner(ctx, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.CalendarIntegration{OwnerID: ownerID, Status: models.IntegrationDisconnected}, false, nil
	}
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load integration")
	}

	s.mu.Lock()
	syncing := s.inFlight[ownerID]
	s.mu.Unlock()
	return integration, syncing, nil
}

// Sync pulls the feed's events within the horizon window and reconciles them
// into the local store in one transaction. If a sync for the same owner is
// already running, the call returns immediately with Skipped set; it does not
// queue behind the running pass. On fetch or reconcile failure the store is
// left as it was and the integration stays connected.
func (s *BridgeService) Sync(ctx context.Context, ownerID string) (*models.SyncResult, error) {
	integration, err := s.integration(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.inFlight[ownerID] {
		s.mu.Unlock()
		s.metrics.RecordSyncRun("skipped")
		return &models.SyncResult{Skipped: true, Syncing: true}, nil
	}
	s.inFlight[ownerID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, ownerID)
		s.mu.Unlock()
	}()

	return s.runSync(ctx, integration)
}

func (s *BridgeService) runSync(ctx context.Context, integration *models.CalendarIntegration) (*models.SyncResult, error) {
	today := timegrid.FromTime(s.now())
	horizonDays := int(s.cfg.SyncHorizon / (24 * time.Hour))
	from := today.AddDays(-horizonDays)
	to := today.AddDays(horizonDays)

	fetched, err := s.provider.ListEvents(ctx, integration.FeedURL, string(from), string(to))
	if err != nil {
		s.metrics.RecordSyncRun("failed")
		s.logger.Warn("calendar fetch failed",
			zap.String("owner_id", integration.OwnerID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrSyncFailed.Code, appErrors.ErrSyncFailed.Status, "calendar feed fetch failed")
	}

	incoming := make([]models.Event, 0, len(fetched))
	for _, pe := range fetched {
		incoming = append(incoming, providerToEvent(pe))
	}

	created, updated, deleted, err := s.events.ReconcileExternal(ctx, integration.OwnerID, incoming)
	if err != nil {
		s.metrics.RecordSyncRun("failed")
		s.logger.Error("calendar reconcile failed",
			zap.String("owner_id", integration.OwnerID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrSyncFailed.Code, appErrors.ErrSyncFailed.Status, "calendar reconcile failed")
	}

	if err := s.integrations.MarkSynced(ctx, integration.OwnerID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to stamp sync time", zap.String("owner_id", integration.OwnerID), zap.Error(err))
	}

	if s.cache != nil && s.cache.Enabled() {
		pattern := "cal:" + integration.OwnerID + ":*"
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}

	s.metrics.RecordSyncRun("ok")
	s.metrics.RecordSyncEvents("created", created)
	s.metrics.RecordSyncEvents("updated", updated)
	s.metrics.RecordSyncEvents("deleted", deleted)

	s.logger.Info("calendar sync complete",
		zap.String("owner_id", integration.OwnerID),
		zap.Int("fetched", len(fetched)),
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Int("deleted", deleted))

	return &models.SyncResult{
		Fetched: len(fetched),
		Created: created,
		Updated: updated,
		Deleted: deleted,
	}, nil
}

// EnsureAutoSync triggers one background sync per owner per process lifetime,
// used when an owner first loads their agenda after startup. Errors are
// logged, not surfaced.
func (s *BridgeService) EnsureAutoSync(ctx context.Context, ownerID string) {
	s.mu.Lock()
	if s.autoSynced[ownerID] {
		s.mu.Unlock()
		return
	}
	s.autoSynced[ownerID] = true
	s.mu.Unlock()

	if _, err := s.Sync(ctx, ownerID); err != nil {
		if errors.Is(err, appErrors.ErrNotConnected) {
			// Not connected yet; keep the session's auto-sync available
			// for after the owner connects.
			s.mu.Lock()
			delete(s.autoSynced, ownerID)
			s.mu.Unlock()
			return
		}
		s.logger.Warn("auto sync failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

// SyncAll runs a sync pass for every connected owner. Invoked on the
// background schedule; one owner's failure does not stop the rest.
func (s *BridgeService) SyncAll(ctx context.Context) {
	integrations, err := s.integrations.ListConnected(ctx)
	if err != nil {
		s.logger.Error("failed to list connected integrations", zap.Error(err))
		return
	}
	for _, integration := range integrations {
		if _, err := s.Sync(ctx, integration.OwnerID); err != nil {
			s.logger.Warn("scheduled sync failed", zap.String("owner_id", integration.OwnerID), zap.Error(err))
		}
	}
}

func (s *BridgeService) integration(ctx context.Context, ownerID string) (*models.CalendarIntegration, error) {
	integration, err := s.integrations.GetByOwner(ctx, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.ErrNotConnected
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load integration")
	}
	if integration.Status != models.IntegrationConnected {
		return nil, appErrors.ErrNotConnected
	}
	return integration, nil
}

func providerToEvent(pe icsfeed.ProviderEvent) models.Event {
	uid := pe.UID
	event := models.Event{
		Title:       pe.Title,
		Description: pe.Description,
		StartDate:   timegrid.Day(pe.StartDate),
		AllDay:      pe.AllDay,
		Duration:    pe.Duration,
		EventType:   models.EventTypeMeeting,
		Color:       externalEventColor,
		Source:      models.SourceICSFeed,
		ForeignUID:  &uid,
	}
	if pe.Location != "" {
		location := pe.Location
		event.Location = &location
	}
	if !pe.AllDay && pe.StartTime != "" {
		startTime := pe.StartTime
		event.StartTime = &startTime
	}
	return event
}
