package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opsdesk/opsdesk-api/internal/models"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/icsfeed"
)

type stubProvider struct {
	mu           sync.Mutex
	events       []icsfeed.ProviderEvent
	authorizeErr error
	listErr      error
	listCalls    int

	// When set, ListEvents signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (p *stubProvider) Authorize(_ context.Context, _ string) (string, error) {
	if p.authorizeErr != nil {
		return "", p.authorizeErr
	}
	return "credential", nil
}

func (p *stubProvider) ListEvents(_ context.Context, _, _, _ string) ([]icsfeed.ProviderEvent, error) {
	p.mu.Lock()
	p.listCalls++
	p.mu.Unlock()
	if p.started != nil {
		p.started <- struct{}{}
		<-p.release
	}
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.events, nil
}

type stubIntegrationRepo struct {
	mu          sync.Mutex
	integration *models.CalendarIntegration
	syncedAt    *time.Time
}

func (r *stubIntegrationRepo) GetByOwner(_ context.Context, _ string) (*models.CalendarIntegration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.integration == nil {
		return nil, sql.ErrNoRows
	}
	copied := *r.integration
	return &copied, nil
}

func (r *stubIntegrationRepo) Upsert(_ context.Context, integration *models.CalendarIntegration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *integration
	r.integration = &copied
	return nil
}

func (r *stubIntegrationRepo) SetStatus(_ context.Context, _ string, status models.IntegrationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.integration.Status = status
	return nil
}

func (r *stubIntegrationRepo) MarkSynced(_ context.Context, _ string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncedAt = &at
	return nil
}

func (r *stubIntegrationRepo) ListConnected(_ context.Context) ([]models.CalendarIntegration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.integration == nil || r.integration.Status != models.IntegrationConnected {
		return nil, nil
	}
	return []models.CalendarIntegration{*r.integration}, nil
}

// fakeEventStore mirrors the reconcile contract in memory, keyed by
// foreign UID.
type fakeEventStore struct {
	mu       sync.Mutex
	byUID    map[string]models.Event
	failWith error
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{byUID: make(map[string]models.Event)}
}

func (f *fakeEventStore) ReconcileExternal(_ context.Context, _ string, incoming []models.Event) (created, updated, deleted int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, 0, 0, f.failWith
	}

	seen := make(map[string]struct{}, len(incoming))
	for _, event := range incoming {
		if event.ForeignUID == nil {
			continue
		}
		uid := *event.ForeignUID
		seen[uid] = struct{}{}
		if _, ok := f.byUID[uid]; ok {
			updated++
		} else {
			created++
		}
		f.byUID[uid] = event
	}
	for uid := range f.byUID {
		if _, ok := seen[uid]; !ok {
			delete(f.byUID, uid)
			deleted++
		}
	}
	return created, updated, deleted, nil
}

func newBridge(provider *stubProvider, integrations *stubIntegrationRepo, store *fakeEventStore) *BridgeService {
	return NewBridgeService(provider, integrations, store, nil, NewMetricsService(), zap.NewNop(), BridgeServiceConfig{})
}

func connectedRepo() *stubIntegrationRepo {
	return &stubIntegrationRepo{integration: &models.CalendarIntegration{
		ID:       "int-1",
		OwnerID:  "owner-1",
		Provider: "ics",
		FeedURL:  "https://calendar.example.com/feed.ics",
		Status:   models.IntegrationConnected,
	}}
}

func TestBridgeSyncRequiresConnection(t *testing.T) {
	bridge := newBridge(&stubProvider{}, &stubIntegrationRepo{}, newFakeEventStore())

	_, err := bridge.Sync(context.Background(), "owner-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotConnected))
}

func TestBridgeSyncIsIdempotent(t *testing.T) {
	provider := &stubProvider{events: []icsfeed.ProviderEvent{
		{UID: "uid-1", Title: "Board meeting", StartDate: "2026-03-10", StartTime: "09:00", Duration: 60},
		{UID: "uid-2", Title: "Trade fair", StartDate: "2026-03-11", AllDay: true, Duration: 60},
	}}
	store := newFakeEventStore()
	bridge := newBridge(provider, connectedRepo(), store)
	ctx := context.Background()

	first, err := bridge.Sync(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.Updated)

	second, err := bridge.Sync(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Equal(t, 0, second.Deleted)
	assert.Len(t, store.byUID, 2)
}

func TestBridgeSyncDeletesVanishedEvents(t *testing.T) {
	provider := &stubProvider{events: []icsfeed.ProviderEvent{
		{UID: "uid-1", Title: "Board meeting", StartDate: "2026-03-10", StartTime: "09:00", Duration: 60},
		{UID: "uid-2", Title: "Trade fair", StartDate: "2026-03-11", AllDay: true, Duration: 60},
	}}
	store := newFakeEventStore()
	bridge := newBridge(provider, connectedRepo(), store)
	ctx := context.Background()

	_, err := bridge.Sync(ctx, "owner-1")
	require.NoError(t, err)

	provider.events = provider.events[:1]
	result, err := bridge.Sync(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
	assert.Len(t, store.byUID, 1)
	_, remains := store.byUID["uid-1"]
	assert.True(t, remains)
}

func TestBridgeSyncFetchFailureLeavesStoreUntouched(t *testing.T) {
	provider := &stubProvider{events: []icsfeed.ProviderEvent{
		{UID: "uid-1", Title: "Board meeting", StartDate: "2026-03-10", StartTime: "09:00", Duration: 60},
	}}
	store := newFakeEventStore()
	repo := connectedRepo()
	bridge := newBridge(provider, repo, store)
	ctx := context.Background()

	_, err := bridge.Sync(ctx, "owner-1")
	require.NoError(t, err)

	provider.listErr = errors.New("feed unreachable")
	_, err = bridge.Sync(ctx, "owner-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSyncFailed.Code, appErrors.FromError(err).Code)

	// Mirrored events and the connection both survive the failure.
	assert.Len(t, store.byUID, 1)
	assert.Equal(t, models.IntegrationConnected, repo.integration.Status)
}

func TestBridgeSyncCoalescesConcurrentRequests(t *testing.T) {
	provider := &stubProvider{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	bridge := newBridge(provider, connectedRepo(), newFakeEventStore())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := bridge.Sync(ctx, "owner-1")
		done <- err
	}()
	<-provider.started

	skipped, err := bridge.Sync(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, skipped.Skipped)

	close(provider.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, provider.listCalls)
}

func TestBridgeConnectThenDisconnectKeepsMirroredEvents(t *testing.T) {
	provider := &stubProvider{events: []icsfeed.ProviderEvent{
		{UID: "uid-1", Title: "Board meeting", StartDate: "2026-03-10", StartTime: "09:00", Duration: 60},
	}}
	store := newFakeEventStore()
	repo := &stubIntegrationRepo{}
	bridge := newBridge(provider, repo, store)
	ctx := context.Background()

	integration, err := bridge.Connect(ctx, "owner-1", ConnectRequest{
		Provider: "ics",
		FeedURL:  "https://calendar.example.com/feed.ics",
	})
	require.NoError(t, err)
	assert.Equal(t, models.IntegrationConnected, integration.Status)

	_, err = bridge.Sync(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, store.byUID, 1)

	require.NoError(t, bridge.Disconnect(ctx, "owner-1"))
	assert.Equal(t, models.IntegrationDisconnected, repo.integration.Status)
	assert.Len(t, store.byUID, 1)

	_, err = bridge.Sync(ctx, "owner-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotConnected))
}

func TestBridgeAutoSyncSurvivesPreConnectionAgendaView(t *testing.T) {
	provider := &stubProvider{events: []icsfeed.ProviderEvent{
		{UID: "uid-1", Title: "Board meeting", StartDate: "2026-03-10", StartTime: "09:00", Duration: 60},
	}}
	repo := &stubIntegrationRepo{}
	bridge := newBridge(provider, repo, newFakeEventStore())
	ctx := context.Background()

	bridge.EnsureAutoSync(ctx, "owner-1")
	assert.Equal(t, 0, provider.listCalls)

	_, err := bridge.Connect(ctx, "owner-1", ConnectRequest{
		Provider: "ics",
		FeedURL:  "https://calendar.example.com/feed.ics",
	})
	require.NoError(t, err)

	bridge.EnsureAutoSync(ctx, "owner-1")
	assert.Equal(t, 1, provider.listCalls)

	bridge.EnsureAutoSync(ctx, "owner-1")
	assert.Equal(t, 1, provider.listCalls)
}
