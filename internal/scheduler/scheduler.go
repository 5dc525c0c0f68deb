package scheduler

import (
	"context"
	"time"

	"github.com/dvergaray/quizarena/internal/logger"
)

// Scheduler runs the expiry sweep on a fixed interval until stopped.
type Scheduler struct {
	expiryScheduler *ExpiryScheduler
	interval        time.Duration
	logger          *logger.Logger
	stopChan        chan struct{}
}

func NewScheduler(expiryScheduler *ExpiryScheduler, interval time.Duration, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		expiryScheduler: expiryScheduler,
		interval:        interval,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("Tournament expiry scheduler started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)

	for {
		select {
		case <-ticker.C:
			ctx := context.Background()
			if err := s.expiryScheduler.SweepExpired(ctx, time.Now()); err != nil {
				s.logger.Error("Expiry sweep failed", "error", err)
			}

		case <-s.stopChan:
			ticker.Stop()
			s.logger.Info("Tournament expiry scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) Stop() error {
	close(s.stopChan)
	return nil
}
