package money

import (
	"fmt"

	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RoundCurrency rounds a monetary value to two decimal places. This is the
// single rounding rule used everywhere money is computed or stored.
func RoundCurrency(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// Convert converts an amount between two currencies via the base currency.
// Both rates are expressed as units of the respective currency per 1 unit of
// base; pass a rate of 1 for the base currency itself.
func Convert(amount, fromRate, toRate decimal.Decimal) (decimal.Decimal, error) {
	if fromRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("%w: from rate %s", apperrors.ErrInvalidRate, fromRate)
	}
	if toRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("%w: to rate %s", apperrors.ErrInvalidRate, toRate)
	}
	return amount.Mul(toRate).Div(fromRate), nil
}

// ToBase converts an amount in a non-base currency to the base currency
// using the given rate, rounded to currency precision.
func ToBase(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("%w: rate %s", apperrors.ErrInvalidRate, rate)
	}
	return RoundCurrency(amount.Div(rate)), nil
}

// PercentChange returns (new-old)/old*100, or nil when old is zero so callers
// never divide by zero.
func PercentChange(oldRate, newRate decimal.Decimal) *decimal.Decimal {
	if oldRate.IsZero() {
		return nil
	}
	change := newRate.Sub(oldRate).Div(oldRate).Mul(decimal.NewFromInt(100))
	return &change
}
