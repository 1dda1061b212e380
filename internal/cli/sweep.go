package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/aretw0/sentinel/pkg/observability"
)

// Sweeper prunes expired transcripts on a cron schedule.
type Sweeper struct {
	cron    *cron.Cron
	pruner  Pruner
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewSweeper schedules p on spec (standard cron or "@every <duration>").
func NewSweeper(spec string, p Pruner, metrics *observability.Metrics, logger *slog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(),
		pruner:  p,
		metrics: metrics,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep prunes once.
func (s *Sweeper) Sweep(ctx context.Context) int {
	n, err := s.pruner.Prune(ctx)
	if err != nil {
		s.logger.Warn("session sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		s.metrics.SessionsPruned.Add(float64(n))
		s.logger.Info("expired sessions pruned", "count", n)
	}
	return n
}
