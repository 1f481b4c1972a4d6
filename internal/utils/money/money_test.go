package money_test

import (
	"testing"

	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/utils/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3.081664", "3.08"},
		{"3.085", "3.09"},
		{"100", "100"},
		{"-1.005", "-1.01"},
	}
	for _, tt := range tests {
		assert.True(t, money.RoundCurrency(dec(tt.in)).Equal(dec(tt.want)), "round(%s) should be %s", tt.in, tt.want)
	}
}

func TestConvert(t *testing.T) {
	// 3245 TRY at 32.45 TRY/base into EUR at 0.92 EUR/base: 3245 * 0.92 / 32.45 = 92
	got, err := money.Convert(dec("3245"), dec("32.45"), dec("0.92"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("92")), "got %s", got)

	// base-to-base is the identity
	got, err = money.Convert(dec("42.50"), decimal.NewFromInt(1), decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("42.50")))
}

func TestConvert_RejectsNonPositiveRates(t *testing.T) {
	_, err := money.Convert(dec("100"), decimal.Zero, dec("0.92"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRate)

	_, err = money.Convert(dec("100"), dec("32.45"), dec("-0.92"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRate)
}

func TestToBase(t *testing.T) {
	got, err := money.ToBase(dec("3245"), dec("32.45"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("100")), "got %s", got)

	got, err = money.ToBase(dec("100"), dec("32.45"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("3.08")), "got %s", got)

	_, err = money.ToBase(dec("100"), decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRate)
}

func TestPercentChange(t *testing.T) {
	change := money.PercentChange(dec("32.00"), dec("32.45"))
	require.NotNil(t, change)
	// (32.45-32.00)/32.00*100 = 1.40625
	assert.True(t, change.Equal(dec("1.40625")), "got %s", change)

	change = money.PercentChange(dec("32.45"), dec("32.00"))
	require.NotNil(t, change)
	assert.True(t, change.IsNegative())

	assert.Nil(t, money.PercentChange(decimal.Zero, dec("32.45")))
}
