package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateSource is a single strategy that resolves the exchange rate for one
// currency, expressed as units of the target currency per 1 unit of base.
// A source that answered but had nothing for the requested code returns
// apperrors.ErrNoRateFound; transport or parse failures return other errors.
// Either way the chain advances to the next source.
type RateSource interface {
	// Name identifies the source in audit log entries.
	Name() string

	// Fetch resolves the rate for the given currency code.
	Fetch(ctx context.Context, currencyCode string) (decimal.Decimal, error)
}

// RateResult is a successful chain resolution: the rate and the name of the
// source that produced it.
type RateResult struct {
	Rate   decimal.Decimal
	Source string
}

// RateFetcher is the fallback chain consumed by the update executor.
type RateFetcher interface {
	// Name identifies the attempted chain on failed audit entries.
	Name() string

	// Fetch tries each source in order and returns the first success, or
	// apperrors.ErrNoRateAvailable when every source is exhausted.
	Fetch(ctx context.Context, currencyCode string) (RateResult, error)
}
