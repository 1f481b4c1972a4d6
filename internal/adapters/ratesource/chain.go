package ratesource

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/ports"
	"github.com/shopspring/decimal"
)

// Chain tries an ordered list of rate sources until one succeeds. A source
// error or a missing rate advances to the next source; there is no retry of
// the same source within one evaluation. The conventional ordering is
// primary scrape, secondary REST API, then the last-known-good cache.
type Chain struct {
	sources []ports.RateSource
	name    string
	logger  *slog.Logger
}

// NewChain builds a chain over the given sources, tried in order.
func NewChain(logger *slog.Logger, sources ...ports.RateSource) *Chain {
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		sources: sources,
		name:    strings.Join(names, ">"),
		logger:  logger,
	}
}

// Name identifies the attempted chain on failed audit entries.
func (c *Chain) Name() string {
	return c.name
}

// Fetch returns the first successful rate together with the name of the
// source that produced it, or apperrors.ErrNoRateAvailable when every source
// is exhausted.
func (c *Chain) Fetch(ctx context.Context, currencyCode string) (ports.RateResult, error) {
	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return ports.RateResult{}, err
		}

		rate, err := src.Fetch(ctx, currencyCode)
		if err != nil {
			c.logger.Debug("Rate source did not resolve",
				slog.String("source", src.Name()),
				slog.String("currency_code", currencyCode),
				slog.String("error", err.Error()),
			)
			continue
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			c.logger.Warn("Rate source returned a non-positive rate",
				slog.String("source", src.Name()),
				slog.String("currency_code", currencyCode),
				slog.String("rate", rate.String()),
			)
			continue
		}
		return ports.RateResult{Rate: rate, Source: src.Name()}, nil
	}
	return ports.RateResult{}, fmt.Errorf("%w: chain %s exhausted for %s", apperrors.ErrNoRateAvailable, c.name, currencyCode)
}

var _ ports.RateFetcher = (*Chain)(nil)
