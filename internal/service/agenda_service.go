package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/opsdesk/opsdesk-api/internal/models"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

type scheduleReader interface {
	EventsOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Event, error)
	TasksOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Task, error)
	OverdueBefore(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Task, error)
	Stats(ctx context.Context, ownerID string) (*models.CalendarStats, error)
}

// AgendaServiceConfig tunes agenda caching.
type AgendaServiceConfig struct {
	StatsCacheTTL  time.Duration
	AgendaCacheTTL time.Duration
}

// AgendaService composes the merged day view over the schedule store. The
// composition is recomputed on every query; only the short-lived Redis
// cache ever holds a copy, and every store write invalidates it.
type AgendaService struct {
	store  scheduleReader
	cache  *CacheService
	logger *zap.Logger
	cfg    AgendaServiceConfig
}

// NewAgendaService constructs the service.
func NewAgendaService(store scheduleReader, cache *CacheService, logger *zap.Logger, cfg AgendaServiceConfig) *AgendaService {
	if cfg.StatsCacheTTL <= 0 {
		cfg.StatsCacheTTL = time.Minute
	}
	if cfg.AgendaCacheTTL <= 0 {
		cfg.AgendaCacheTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgendaService{store: store, cache: cache, logger: logger, cfg: cfg}
}

// AgendaFor merges the day's events and tasks into one chronologically
// ordered list. Entries without a time of day sort to the end of the day;
// at equal times events come before tasks, otherwise collection order is
// preserved.
func (s *AgendaService) AgendaFor(ctx context.Context, ownerID string, day timegrid.Day, includeCompleted bool) ([]models.AgendaEntry, error) {
	cacheKey := fmt.Sprintf("cal:%s:agenda:%s:%t", ownerID, day, includeCompleted)
	if s.cache != nil {
		var cached []models.AgendaEntry
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	events, err := s.store.EventsOn(ctx, ownerID, day)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.TasksOn(ctx, ownerID, day)
	if err != nil {
		return nil, err
	}

	entries := make([]models.AgendaEntry, 0, len(events)+len(tasks))
	for i := range events {
		event := events[i]
		entries = append(entries, models.AgendaEntry{
			Kind:  models.AgendaEntryEvent,
			Time:  event.TimeKey(),
			Event: &event,
		})
	}
	for i := range tasks {
		task := tasks[i]
		if task.Completed && !includeCompleted {
			continue
		}
		entries = append(entries, models.AgendaEntry{
			Kind: models.AgendaEntryTask,
			Time: task.TimeKey(),
			Task: &task,
		})
	}

	// Stable: events were appended first, so they win ties against tasks
	// and original collection order survives within each kind.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, entries, s.cfg.AgendaCacheTTL); err != nil {
			s.logger.Warn("agenda cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return entries, nil
}

// OverdueTasks returns incomplete tasks dated before the given day, oldest
// first, each annotated with its age in whole days.
func (s *AgendaService) OverdueTasks(ctx context.Context, ownerID string, day timegrid.Day) ([]models.OverdueTask, error) {
	tasks, err := s.store.OverdueBefore(ctx, ownerID, day)
	if err != nil {
		return nil, err
	}
	overdue := make([]models.OverdueTask, 0, len(tasks))
	for _, task := range tasks {
		if task.StartDate == nil {
			continue
		}
		overdue = append(overdue, models.OverdueTask{
			Task:        task,
			DaysOverdue: timegrid.DaysBetween(*task.StartDate, day),
		})
	}
	return overdue, nil
}

// Stats returns the aggregate task statistics, cache-aside.
func (s *AgendaService) Stats(ctx context.Context, ownerID string) (*models.CalendarStats, error) {
	cacheKey := fmt.Sprintf("cal:%s:stats", ownerID)
	if s.cache != nil {
		var cached models.CalendarStats
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	stats, err := s.store.Stats(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.StatsCacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return stats, nil
}
