package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	portssvc "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/services"
)

// Options tune scheduler behaviour.
type Options struct {
	Interval   time.Duration
	RunOnStart bool
}

// Scheduler drives the recurring due-check tick. Ticks are single-flight: if
// a tick is still processing when the timer fires again, the new tick is
// skipped entirely and the following tick re-evaluates from current state.
// The skip guard is explicit scheduler state so it can be constructed and
// torn down per test case.
type Scheduler struct {
	opts    Options
	updater portssvc.RateUpdaterSvc
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	skipped int
}

// New constructs a Scheduler instance.
func New(opts Options, updater portssvc.RateUpdaterSvc, logger *slog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		opts:    opts,
		updater: updater,
		logger:  logger.With(slog.String("component", "scheduler")),
	}
}

// Run blocks, firing a tick at every interval until ctx is cancelled. The
// tick body runs in its own goroutine so a slow pass never delays the timer.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.opts.RunOnStart {
		s.fire(ctx)
	}

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

// fire starts one tick unless a previous tick is still in flight.
func (s *Scheduler) fire(ctx context.Context) {
	if !s.tryBegin() {
		s.logger.Warn("Previous tick still running, skipping this tick")
		return
	}

	go func() {
		defer s.end()
		if _, err := s.updater.RunTick(ctx, domain.TriggerCron); err != nil {
			s.logger.Error("Scheduled tick failed", slog.String("error", err.Error()))
		}
	}()
}

func (s *Scheduler) tryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.skipped++
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// SkippedTicks reports how many ticks were skipped because a previous tick
// was still in flight.
func (s *Scheduler) SkippedTicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}
