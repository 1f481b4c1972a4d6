package services

import (
	"context"
	"fmt"

	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	portssvc "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/services"
	"github.com/oguzbenturk/ukcworld-rates/internal/utils/money"
	"github.com/shopspring/decimal"
)

// TransparencyService snapshots the conversion rate used at the moment a
// ledger transaction is created. It reads the registry's current rate at that
// instant and never mutates it; the returned snapshot is persisted verbatim
// by the ledger and never recomputed.
type TransparencyService struct {
	BaseService
	registry portssvc.CurrencyReaderSvc
}

// NewTransparencyService creates a new TransparencyService.
func NewTransparencyService(registry portssvc.CurrencyReaderSvc) *TransparencyService {
	return &TransparencyService{registry: registry}
}

// PrepareTransaction converts the entered amount into the ledger currency.
// When the entered currency is already the ledger currency the exchange rate
// is nil and no registry lookup occurs.
func (s *TransparencyService) PrepareTransaction(ctx context.Context, enteredAmount decimal.Decimal, enteredCurrency, ledgerCurrency string) (*domain.Transaction, error) {
	if err := validateCurrencyCode(enteredCurrency); err != nil {
		return nil, err
	}
	if err := validateCurrencyCode(ledgerCurrency); err != nil {
		return nil, err
	}

	if enteredCurrency == ledgerCurrency {
		return &domain.Transaction{
			Amount:           enteredAmount,
			CurrencyCode:     ledgerCurrency,
			OriginalAmount:   enteredAmount,
			OriginalCurrency: enteredCurrency,
			ExchangeRate:     nil,
		}, nil
	}

	fromRate, err := s.usableRate(ctx, enteredCurrency)
	if err != nil {
		return nil, err
	}
	toRate, err := s.usableRate(ctx, ledgerCurrency)
	if err != nil {
		return nil, err
	}

	// The snapshot rate is the exact ratio such that
	// amount == round(originalAmount / rate, 2). With a base-currency
	// ledger this is simply the entered currency's current rate.
	rate := fromRate.Div(toRate)
	amount, err := money.ToBase(enteredAmount, rate)
	if err != nil {
		return nil, err
	}

	return &domain.Transaction{
		Amount:           amount,
		CurrencyCode:     ledgerCurrency,
		OriginalAmount:   enteredAmount,
		OriginalCurrency: enteredCurrency,
		ExchangeRate:     &rate,
	}, nil
}

// usableRate returns the currency's current rate, or 1 for the base
// currency. A currency whose rate has never been fetched cannot back a
// financial operation; the caller must fail rather than guess.
func (s *TransparencyService) usableRate(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	currency, err := s.registry.GetCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to resolve rate for %s: %w", currencyCode, err)
	}
	if currency.IsBase {
		return decimal.NewFromInt(1), nil
	}
	if currency.Rate.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: currency %s has never had a rate fetched", apperrors.ErrNoRateAvailable, currencyCode)
	}
	if currency.Rate.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: currency %s has rate %s", apperrors.ErrInvalidRate, currencyCode, currency.Rate)
	}
	return currency.Rate, nil
}
