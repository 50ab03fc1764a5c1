package rental

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically moves overdue rentals to the overdue status.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(svc *Service, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{svc: svc, interval: interval, log: log}
}

// RunOnce performs a single sweep and logs the outcome.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := s.svc.SweepOverdue(ctx)
	if err != nil {
		s.log.Error("overdue sweep failed", zap.Error(err))
		return 0, err
	}
	s.log.Info("overdue sweep completed", zap.Int("marked", n), zap.Duration("took", time.Since(start)))
	return n, nil
}

// Start sweeps immediately, then on every tick until ctx is cancelled.
// The returned channel is closed once the goroutine has exited.
func (s *Sweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		_, _ = s.RunOnce(ctx)
		for {
			select {
			case <-ticker.C:
				_, _ = s.RunOnce(ctx)
			case <-ctx.Done():
				s.log.Info("overdue sweeper stopped")
				return
			}
		}
	}()

	s.log.Info("overdue sweeper started", zap.Duration("interval", s.interval))
	return done
}
