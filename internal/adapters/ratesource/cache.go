package ratesource

import (
	"context"
	"fmt"

	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/ports"
	portsrepo "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const cacheSourceName = "cache"

// Cache is the chain's terminal fallback: the currency's last successfully
// fetched rate. It never surfaces a transport error; anything short of a
// usable cached rate is reported as apperrors.ErrNoRateFound.
type Cache struct {
	currencies portsrepo.CurrencyReader
}

// NewCache builds the last-known-good cache source over the currency store.
func NewCache(currencies portsrepo.CurrencyReader) *Cache {
	return &Cache{currencies: currencies}
}

// Name identifies the source in audit log entries.
func (c *Cache) Name() string {
	return cacheSourceName
}

// Fetch returns the last good rate for the currency, if one was ever
// recorded.
func (c *Cache) Fetch(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	currency, err := c.currencies.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: no cached rate for %s", apperrors.ErrNoRateFound, currencyCode)
	}
	if currency.LastUpdatedAt == nil || currency.Rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("%w: no cached rate for %s", apperrors.ErrNoRateFound, currencyCode)
	}
	return currency.Rate, nil
}

var _ ports.RateSource = (*Cache)(nil)
