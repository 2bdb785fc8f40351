package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the sync API rate limit is exceeded.
var ErrRateLimited = errors.New("rate limit exceeded")

// SyncResult contains the result of a sync operation.
type SyncResult struct {
	CatalogsAdded   int       `json:"catalogs_added"`
	CatalogsRemoved int       `json:"catalogs_removed"`
	CatalogsTotal   int       `json:"catalogs_total"`
	Definitions     int       `json:"definitions"`
	SyncedAt        time.Time `json:"synced_at"`
	NextScheduledAt time.Time `json:"next_scheduled_at,omitempty"`
}

// syncCooldown is the minimum time between two API-triggered syncs.
const syncCooldown = 30 * time.Second

// SyncService keeps the registry in step with object storage, on a
// schedule and on demand. Concurrent syncs share a single run.
type SyncService struct {
	registry *CatalogRegistry
	interval time.Duration
	logger   *slog.Logger
	trigger  *rate.Limiter
	runs     singleflight.Group

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	nextSync time.Time
}

// NewSyncService creates a new sync service. An interval of zero or less
// disables the schedule; TriggerSync still works.
func NewSyncService(registry *CatalogRegistry, interval time.Duration, logger *slog.Logger) *SyncService {
	return &SyncService{
		registry: registry,
		interval: interval,
		logger:   logger,
		trigger:  rate.NewLimiter(rate.Every(syncCooldown), 1),
	}
}

// Start begins the periodic sync scheduler.
func (s *SyncService) Start(ctx context.Context) {
	if s.interval <= 0 || s.done != nil {
		return
	}
	s.logger.Info("starting sync service", "interval", s.interval)

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

func (s *SyncService) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.setNextSync(time.Now().Add(s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync service stopped")
			return
		case <-ticker.C:
			s.logger.Debug("scheduled sync triggered")
			if _, err := s.sync(ctx); err != nil {
				s.logger.Error("sync failed", "error", err)
			}
			s.setNextSync(time.Now().Add(s.interval))
		}
	}
}

// Stop ends the scheduler and waits for a running sync to finish. It is
// safe to call more than once, and without Start.
func (s *SyncService) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.logger.Info("stopping sync service")
		s.cancel()
		<-s.done
	})
}

// TriggerSync runs a sync on demand. It returns ErrRateLimited within the
// cooldown of the previous trigger.
func (s *SyncService) TriggerSync(ctx context.Context) (SyncResult, error) {
	if !s.trigger.Allow() {
		return SyncResult{}, ErrRateLimited
	}
	return s.sync(ctx)
}

// sync runs the registry sync, joining one already in flight.
func (s *SyncService) sync(ctx context.Context) (SyncResult, error) {
	v, err, shared := s.runs.Do("sync", func() (interface{}, error) {
		stats, err := s.registry.Sync(ctx)
		if err != nil {
			return SyncResult{}, err
		}
		result := SyncResult{
			CatalogsAdded:   stats.Added,
			CatalogsRemoved: stats.Removed,
			CatalogsTotal:   s.registry.CatalogCount(),
			Definitions:     s.registry.DefinitionCount(),
			SyncedAt:        time.Now(),
		}
		s.logger.Info("sync completed",
			"added", result.CatalogsAdded,
			"removed", result.CatalogsRemoved,
			"total", result.CatalogsTotal,
		)
		return result, nil
	})
	if shared {
		s.logger.Debug("joined running sync")
	}
	result, _ := v.(SyncResult)
	result.NextScheduledAt = s.getNextSync()
	return result, err
}

func (s *SyncService) setNextSync(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSync = t
}

func (s *SyncService) getNextSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextSync
}

// Interval returns the sync interval.
func (s *SyncService) Interval() time.Duration {
	return s.interval
}
