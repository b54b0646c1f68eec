package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Flusher persists pending in-memory changes.
type Flusher interface {
	Flush(ctx context.Context) error
	Dirty() int
}

// Scheduler runs background tasks
type Scheduler struct {
	flusher  Flusher
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// NewScheduler creates a scheduler that flushes every interval
func NewScheduler(flusher Flusher, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		flusher:  flusher,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start starts the background tasks
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("flush_interval", s.interval))

	go s.runFlushTask(ctx)
}

// Stop stops the background tasks and waits for the final flush
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.done
}

// runFlushTask periodically writes dirty reservations to the database
func (s *Scheduler) runFlushTask(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush(ctx)
		case <-s.stopChan:
			// last chance to persist before shutdown
			s.flush(context.WithoutCancel(ctx))
			s.logger.Info("Flush task stopped")
			return
		case <-ctx.Done():
			s.flush(context.WithoutCancel(ctx))
			s.logger.Info("Flush task cancelled")
			return
		}
	}
}

func (s *Scheduler) flush(ctx context.Context) {
	pending := s.flusher.Dirty()
	if pending == 0 {
		return
	}

	if err := s.flusher.Flush(ctx); err != nil {
		s.logger.Error("Failed to flush reservations", zap.Int("pending", pending), zap.Error(err))
		return
	}

	s.logger.Debug("Reservations flushed", zap.Int("pending", pending))
}
