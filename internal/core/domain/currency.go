package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpdateFrequencies is the whitelist of allowed auto-update intervals in hours.
var UpdateFrequencies = []int{1, 6, 12, 24}

// IsAllowedFrequency reports whether hours is one of the whitelisted
// auto-update intervals.
func IsAllowedFrequency(hours int) bool {
	for _, f := range UpdateFrequencies {
		if hours == f {
			return true
		}
	}
	return false
}

// Currency represents a supported currency and its exchange-rate state.
// Rate is expressed as units of this currency per 1 unit of the base
// currency; it is meaningless when IsBase is true.
type Currency struct {
	CurrencyCode         string          `json:"currencyCode"` // Primary Key (e.g., "TRY")
	Symbol               string          `json:"symbol"`       // e.g., "₺"
	Name                 string          `json:"name"`         // e.g., "Turkish Lira"
	IsBase               bool            `json:"isBase"`
	Rate                 decimal.Decimal `json:"rate"`
	AutoUpdateEnabled    bool            `json:"autoUpdateEnabled"`
	UpdateFrequencyHours int             `json:"updateFrequencyHours"`
	LastUpdatedAt        *time.Time      `json:"lastUpdatedAt"` // nil means never updated
	AuditFields
}

// IsDue reports whether the currency should be refreshed at the given
// instant. The base currency and currencies with auto-update disabled are
// never due. A currency that has never been updated is always due. The
// comparison at the frequency boundary is inclusive.
func (c Currency) IsDue(now time.Time) bool {
	if c.IsBase || !c.AutoUpdateEnabled {
		return false
	}
	if c.LastUpdatedAt == nil {
		return true
	}
	return now.Sub(*c.LastUpdatedAt) >= time.Duration(c.UpdateFrequencyHours)*time.Hour
}
