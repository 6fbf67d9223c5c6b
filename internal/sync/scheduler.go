package sync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler periodically refreshes the catalog in the background. A pass is
// skipped when the data is still fresh; after a failed pass the next attempt
// comes sooner than the regular interval.
type Scheduler struct {
	logger     *zap.Logger
	service    *Service
	interval   time.Duration
	retryDelay time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

func NewScheduler(logger *zap.Logger, service *Service, interval time.Duration) *Scheduler {
	return &Scheduler{
		logger:     logger,
		service:    service,
		interval:   interval,
		retryDelay: time.Hour,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Warn("Background sync is already running")
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(ctx, s.stop, s.done)
	s.logger.Info("Background model sync started", zap.Duration("interval", s.interval))
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("Background model sync stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		wait := s.interval
		if !s.runOnce(ctx) {
			wait = s.retryDelay
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) bool {
	if !s.service.ShouldSync(ctx, s.interval) {
		s.logger.Info("Scheduled sync skipped, data is still fresh")
		return true
	}

	result := s.service.FullSync(ctx, false)
	if result.Status == StatusSuccess {
		s.logger.Info("Scheduled sync completed",
			zap.Int("total_models_synced", result.TotalModelsSynced),
			zap.Int("models_deactivated", result.ModelsDeactivated))
		return true
	}

	s.logger.Warn("Scheduled sync completed with issues",
		zap.String("status", result.Status))
	return false
}

// TriggerBackground kicks off one full sync without making the caller wait.
// Failures are only logged; the triggering request never observes them.
func (s *Scheduler) TriggerBackground(forceRefresh bool) {
	go func() {
		result := s.service.FullSync(context.Background(), forceRefresh)
		if result.Status != StatusSuccess {
			s.logger.Warn("Background sync finished with issues",
				zap.String("status", result.Status))
		}
	}()
}
