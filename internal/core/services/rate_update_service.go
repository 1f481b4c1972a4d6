package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/ports"
	portssvc "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/services"
)

const defaultUpdateConcurrency = 4

// RateUpdateService is the update executor: for each currency currently due
// it invokes the rate source chain and commits the outcome to the registry
// and the audit trail. Per-tick failures are buffered and flushed to the
// failure notifier in a single aggregated call.
type RateUpdateService struct {
	BaseService
	registry    portssvc.CurrencySvcFacade
	chain       ports.RateFetcher
	notifier    ports.FailureNotifier
	concurrency int
}

// NewRateUpdateService creates a new RateUpdateService. A nil notifier
// disables failure notifications. Concurrency bounds how many currencies are
// fetched in parallel within one tick.
func NewRateUpdateService(registry portssvc.CurrencySvcFacade, chain ports.RateFetcher, notifier ports.FailureNotifier, concurrency int) *RateUpdateService {
	if concurrency <= 0 {
		concurrency = defaultUpdateConcurrency
	}
	return &RateUpdateService{
		registry:    registry,
		chain:       chain,
		notifier:    notifier,
		concurrency: concurrency,
	}
}

// RunTick attempts an update for every due currency. Due currencies are
// fetched with bounded parallelism; a failure for one currency never aborts
// the others. Returns a summary of the pass.
func (s *RateUpdateService) RunTick(ctx context.Context, trigger domain.UpdateTrigger) (*domain.TickSummary, error) {
	now := time.Now().UTC()

	candidates, err := s.registry.ListAutoUpdateCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate auto-update candidates: %w", err)
	}

	due := make([]domain.Currency, 0, len(candidates))
	for _, c := range candidates {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}

	summary := &domain.TickSummary{
		StartedAt: now,
		Succeeded: []string{},
		Failed:    []domain.FailedUpdate{},
	}

	if len(due) == 0 {
		return summary, nil
	}

	s.LogInfo(ctx, "Starting rate update pass",
		slog.Int("due_count", len(due)),
		slog.String("triggered_by", string(trigger)),
	)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, s.concurrency)
	)
	for _, currency := range due {
		// Stop dispatching once the tick is cancelled; in-flight updates
		// either commit atomically or have no effect. Attempted counts
		// actual dispatches, not due currencies.
		if ctx.Err() != nil {
			break
		}
		summary.Attempted++
		wg.Add(1)
		go func(c domain.Currency) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			failure := s.updateOne(ctx, c, trigger)
			mu.Lock()
			defer mu.Unlock()
			if failure != nil {
				summary.Failed = append(summary.Failed, *failure)
			} else {
				summary.Succeeded = append(summary.Succeeded, c.CurrencyCode)
			}
		}(currency)
	}
	wg.Wait()

	if len(summary.Failed) > 0 && s.notifier != nil {
		// One aggregated notification per tick, not one per currency.
		if err := s.notifier.NotifyFailures(ctx, summary.Failed); err != nil {
			s.LogError(ctx, err, "Failed to deliver rate failure notification",
				slog.Int("failure_count", len(summary.Failed)))
		}
	}

	s.LogInfo(ctx, "Rate update pass finished",
		slog.Int("attempted", summary.Attempted),
		slog.Int("succeeded", len(summary.Succeeded)),
		slog.Int("failed", len(summary.Failed)),
	)
	return summary, nil
}

// updateOne fetches and commits a single currency. Returns the failure
// detail, or nil on success.
func (s *RateUpdateService) updateOne(ctx context.Context, currency domain.Currency, trigger domain.UpdateTrigger) *domain.FailedUpdate {
	start := time.Now()
	result, err := s.chain.Fetch(ctx, currency.CurrencyCode)
	metadata := map[string]string{
		"fetchDurationMs": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
	}

	if err != nil {
		metadata["chain"] = s.chain.Name()
		if recErr := s.registry.RecordFailedUpdate(ctx, currency.CurrencyCode, s.chain.Name(), trigger, err.Error(), metadata); recErr != nil {
			s.LogError(ctx, recErr, "Failed to append failed-update log entry",
				slog.String("currency_code", currency.CurrencyCode))
		}
		return &domain.FailedUpdate{CurrencyCode: currency.CurrencyCode, ErrorMessage: err.Error()}
	}

	if _, err := s.registry.ApplyRateUpdate(ctx, currency.CurrencyCode, result.Rate, result.Source, trigger, metadata); err != nil {
		// The fetch succeeded but the commit did not; leave a failed audit
		// entry best-effort so the trail explains the missing update.
		if recErr := s.registry.RecordFailedUpdate(ctx, currency.CurrencyCode, result.Source, trigger, err.Error(), metadata); recErr != nil {
			s.LogError(ctx, recErr, "Failed to append failed-update log entry",
				slog.String("currency_code", currency.CurrencyCode))
		}
		return &domain.FailedUpdate{CurrencyCode: currency.CurrencyCode, ErrorMessage: err.Error()}
	}
	return nil
}
