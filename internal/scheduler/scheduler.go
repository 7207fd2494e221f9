package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type bookingSweeper interface {
	CancelExpired(ctx context.Context) (int, error)
	CompleteFinished(ctx context.Context) (int, error)
}

// Scheduler periodically expires stale Pending bookings and completes
// Confirmed bookings whose route has arrived.
type Scheduler struct {
	bookings bookingSweeper
	interval time.Duration
	logger   *slog.Logger
}

func New(bookings bookingSweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{bookings: bookings, interval: interval, logger: logger}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if n, err := s.bookings.CancelExpired(ctx); err != nil {
		s.logger.Error("failed to cancel expired bookings", "error", err.Error())
	} else if n > 0 {
		s.logger.Info("expired pending bookings", "count", n)
	}

	if n, err := s.bookings.CompleteFinished(ctx); err != nil {
		s.logger.Error("failed to complete finished bookings", "error", err.Error())
	} else if n > 0 {
		s.logger.Info("completed finished bookings", "count", n)
	}
}
