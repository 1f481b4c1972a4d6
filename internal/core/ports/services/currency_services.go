package services

import (
	"context"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	"github.com/oguzbenturk/ukcworld-rates/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// ListAutoUpdateCandidates retrieves the currencies eligible for
	// scheduled refresh (never includes the base currency).
	ListAutoUpdateCandidates(ctx context.Context) ([]domain.Currency, error)

	// ListRateUpdateLogs retrieves the audit trail for a currency, newest
	// first. Limit defaults to 50 and is capped at 100 server-side.
	ListRateUpdateLogs(ctx context.Context, currencyCode string, limit, offset int) ([]domain.RateUpdateLog, error)
}

// CurrencyWriterSvc defines write operations for currency data. ApplyRateUpdate
// and SetRateManually are the only writers of rate/lastUpdatedAt; both append
// a RateUpdateLog entry as part of the same logical operation.
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)

	// ApplyRateUpdate records a successful fetch: updates the currency's
	// rate and lastUpdatedAt and appends a success log entry atomically.
	ApplyRateUpdate(ctx context.Context, currencyCode string, newRate decimal.Decimal, source string, trigger domain.UpdateTrigger, metadata map[string]string) (*domain.Currency, error)

	// SetRateManually applies an admin rate override, bypassing the fetch
	// chain. Always logs triggeredBy=admin with the acting user's ID.
	SetRateManually(ctx context.Context, currencyCode string, rate decimal.Decimal, adminUserID string) (*domain.Currency, error)

	// RecordFailedUpdate appends a failed log entry without mutating the
	// currency.
	RecordFailedUpdate(ctx context.Context, currencyCode string, source string, trigger domain.UpdateTrigger, errMsg string, metadata map[string]string) error

	// SetAutoUpdate toggles scheduled refresh for a currency.
	SetAutoUpdate(ctx context.Context, currencyCode string, enabled bool, userID string) (*domain.Currency, error)

	// SetUpdateFrequency changes the refresh interval; hours must be one of
	// the whitelisted values.
	SetUpdateFrequency(ctx context.Context, currencyCode string, hours int, userID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
