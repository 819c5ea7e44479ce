// Package scheduler runs periodic valuation refreshes.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Refresher is anything that can be refreshed on a timer.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler triggers a Refresher on a cron schedule.
// Overlapping runs are skipped rather than queued.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	timeout   time.Duration
}

// New creates a Scheduler for spec, e.g. "@every 5m" or "*/5 * * * *".
// Each run is bounded by timeout when it is positive.
func New(spec string, refresher Refresher, timeout time.Duration) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	s := &Scheduler{cron: c, refresher: refresher, timeout: timeout}

	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Time("next", s.Next()).Msg("refresh scheduler started")
}

// Stop halts the schedule and waits for a running refresh to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("refresh still running at shutdown")
	}
}

// Next returns the time of the next scheduled refresh.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("scheduled refresh failed")
		return
	}
	log.Info().Dur("duration", time.Since(started)).Msg("scheduled refresh completed")
}
