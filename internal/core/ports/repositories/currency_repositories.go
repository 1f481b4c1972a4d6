package repositories

import (
	"context"
	"time"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CurrencyReader defines read operations for currency data
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a specific currency by its code.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// FindBaseCurrency retrieves the single base currency, or ErrNotFound
	// when none has been created yet.
	FindBaseCurrency(ctx context.Context) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// ListAutoUpdateCandidates retrieves currencies eligible for scheduled
	// refresh: auto-update enabled and not the base currency.
	ListAutoUpdateCandidates(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency data
type CurrencyWriter interface {
	// SaveCurrency persists a new currency.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// UpdateRateWithLog sets the currency's rate and lastUpdatedAt and
	// appends the given audit log entry within a single database
	// transaction. A reader must never observe one without the other.
	UpdateRateWithLog(ctx context.Context, currencyCode string, newRate decimal.Decimal, updatedAt time.Time, entry domain.RateUpdateLog) error

	// SetAutoUpdate toggles the auto-update flag for a currency.
	SetAutoUpdate(ctx context.Context, currencyCode string, enabled bool, updatedBy string, updatedAt time.Time) error

	// SetUpdateFrequency changes the configured refresh interval for a currency.
	SetUpdateFrequency(ctx context.Context, currencyCode string, hours int, updatedBy string, updatedAt time.Time) error
}

// CurrencyRepositoryFacade combines all currency-related repository interfaces
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
