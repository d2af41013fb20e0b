package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler re-runs the pipeline at a fixed interval so the published
// collection stays fresh without an external cron.
type Scheduler struct {
	pipeline *Pipeline
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// NewScheduler builds a refresh loop around the pipeline.
func NewScheduler(pipeline *Pipeline, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{pipeline: pipeline, interval: interval, logger: logger}
}

// Start launches the refresh loop. The first run fires immediately; the
// loop exits when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)
		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the refresh loop. The scheduler may be started again
// afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	summary := s.pipeline.RunWithRetry(ctx)
	if s.logger != nil {
		s.logger.Info("refresh completed",
			"success", summary.Success,
			"articles", len(summary.Articles),
			"sources_ok", summary.SourcesSucceeded,
			"errors", len(summary.Errors))
	}
}
