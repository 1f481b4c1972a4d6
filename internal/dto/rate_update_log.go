package dto

import (
	"time"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateUpdateLogResponse defines the data returned for one audit log entry.
type RateUpdateLogResponse struct {
	LogID             string            `json:"logID"`
	CurrencyCode      string            `json:"currencyCode"`
	OldRate           *decimal.Decimal  `json:"oldRate"`
	NewRate           *decimal.Decimal  `json:"newRate"`
	RateChangePercent *decimal.Decimal  `json:"rateChangePercent"`
	Source            string            `json:"source"`
	Status            string            `json:"status"`
	ErrorMessage      *string           `json:"errorMessage"`
	TriggeredBy       string            `json:"triggeredBy"`
	TriggeredByUserID *string           `json:"triggeredByUserID"`
	Metadata          map[string]string `json:"metadata"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// ToRateUpdateLogResponse converts a domain.RateUpdateLog to its DTO
func ToRateUpdateLogResponse(entry *domain.RateUpdateLog) RateUpdateLogResponse {
	return RateUpdateLogResponse{
		LogID:             entry.LogID,
		CurrencyCode:      entry.CurrencyCode,
		OldRate:           entry.OldRate,
		NewRate:           entry.NewRate,
		RateChangePercent: entry.RateChangePercent,
		Source:            entry.Source,
		Status:            string(entry.Status),
		ErrorMessage:      entry.ErrorMessage,
		TriggeredBy:       string(entry.TriggeredBy),
		TriggeredByUserID: entry.TriggeredByUserID,
		Metadata:          entry.Metadata,
		CreatedAt:         entry.CreatedAt,
	}
}

// ToListRateUpdateLogResponse converts a slice of log entries to DTOs
func ToListRateUpdateLogResponse(entries []domain.RateUpdateLog) []RateUpdateLogResponse {
	res := make([]RateUpdateLogResponse, len(entries))
	for i := range entries {
		res[i] = ToRateUpdateLogResponse(&entries[i])
	}
	return res
}

// TickSummaryResponse defines the data returned by a run-now pass.
type TickSummaryResponse struct {
	StartedAt time.Time             `json:"startedAt"`
	Attempted int                   `json:"attempted"`
	Succeeded []string              `json:"succeeded"`
	Failed    []domain.FailedUpdate `json:"failed"`
}

// ToTickSummaryResponse converts a domain.TickSummary to its DTO
func ToTickSummaryResponse(s *domain.TickSummary) TickSummaryResponse {
	return TickSummaryResponse{
		StartedAt: s.StartedAt,
		Attempted: s.Attempted,
		Succeeded: s.Succeeded,
		Failed:    s.Failed,
	}
}
