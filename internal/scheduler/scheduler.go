package scheduler

import (
	"context"
	"log/slog"
	"time"

	"spacetraveling/internal/domain"
)

// Builder regenerates the static site.
type Builder interface {
	Build(ctx context.Context) (*domain.BuildStats, error)
}

type Scheduler struct {
	builder  Builder
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(builder Builder, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		builder:  builder,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start rebuilds on every tick until ctx is done. The first build runs at
// the first tick since serve mode already built on startup.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runBuild(ctx)
		}
	}
}

func (s *Scheduler) runBuild(ctx context.Context) {
	buildCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.builder.Build(buildCtx); err != nil {
		s.logger.Error("scheduled build failed", "error", err)
	}
}
