package dto

import (
	"time"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCurrencyRequest defines the data needed to create a new currency.
type CreateCurrencyRequest struct {
	CurrencyCode         string           `json:"currencyCode" binding:"required,uppercase,alpha,len=3"`
	Symbol               string           `json:"symbol" binding:"required"`
	Name                 string           `json:"name" binding:"required"`
	IsBase               bool             `json:"isBase"`
	Rate                 *decimal.Decimal `json:"rate"`
	AutoUpdateEnabled    bool             `json:"autoUpdateEnabled"`
	UpdateFrequencyHours int              `json:"updateFrequencyHours"`
}

// SetAutoUpdateRequest toggles scheduled refresh for a currency.
// Enabled is a pointer so an absent field is rejected instead of silently
// defaulting to false.
type SetAutoUpdateRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetFrequencyRequest changes the refresh interval for a currency.
type SetFrequencyRequest struct {
	Hours int `json:"hours" binding:"required"`
}

// SetRateRequest applies an admin rate override.
type SetRateRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyCode         string          `json:"currencyCode"`
	Symbol               string          `json:"symbol"`
	Name                 string          `json:"name"`
	IsBase               bool            `json:"isBase"`
	Rate                 decimal.Decimal `json:"rate"`
	AutoUpdateEnabled    bool            `json:"autoUpdateEnabled"`
	UpdateFrequencyHours int             `json:"updateFrequencyHours"`
	LastUpdatedAt        *time.Time      `json:"lastUpdatedAt"`
	CreatedAt            time.Time       `json:"createdAt"`
	LastUpdatedBy        string          `json:"lastUpdatedBy"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(curr *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode:         curr.CurrencyCode,
		Symbol:               curr.Symbol,
		Name:                 curr.Name,
		IsBase:               curr.IsBase,
		Rate:                 curr.Rate,
		AutoUpdateEnabled:    curr.AutoUpdateEnabled,
		UpdateFrequencyHours: curr.UpdateFrequencyHours,
		LastUpdatedAt:        curr.LastUpdatedAt,
		CreatedAt:            curr.CreatedAt,
		LastUpdatedBy:        curr.LastUpdatedBy,
	}
}

// ToListCurrencyResponse converts a slice of domain.Currency to response DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		res[i] = ToCurrencyResponse(&currencies[i])
	}
	return res
}
