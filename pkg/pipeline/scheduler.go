package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler runs pipeline cycles on a fixed interval until the context is
// canceled. The first cycle runs immediately.
type Scheduler struct {
	pipeline *Pipeline
	interval time.Duration
	logger   *logrus.Logger
}

// NewScheduler creates an interval scheduler for the pipeline.
func NewScheduler(p *Pipeline, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		pipeline: p,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks, executing cycles until ctx is done. A failed cycle does not
// stop the scheduler; critical failures were already surfaced to the
// notification path by the error core.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.WithField("interval", s.interval.String()).Info("Starting pipeline scheduler")

	if err := s.pipeline.RunCycle(ctx); err != nil {
		s.logger.WithError(err).Error("Pipeline cycle failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := s.pipeline.RunCycle(ctx); err != nil {
				s.logger.WithError(err).Error("Pipeline cycle failed")
			}
		}
	}
}
