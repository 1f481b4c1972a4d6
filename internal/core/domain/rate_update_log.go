package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpdateStatus is the outcome of a single rate update attempt.
type UpdateStatus string

const (
	UpdateSuccess UpdateStatus = "success"
	UpdateFailed  UpdateStatus = "failed"
)

// UpdateTrigger identifies what initiated a rate update attempt.
type UpdateTrigger string

const (
	TriggerCron   UpdateTrigger = "cron"   // scheduled tick
	TriggerAdmin  UpdateTrigger = "admin"  // manual rate override by an admin
	TriggerManual UpdateTrigger = "manual" // admin-initiated run-now pass
)

// RateUpdateLog is one immutable record per rate update attempt, success or
// failure. Entries are append-only; they are never updated or deleted.
type RateUpdateLog struct {
	LogID             string            `json:"logID"` // Primary Key (UUID)
	CurrencyCode      string            `json:"currencyCode"`
	OldRate           *decimal.Decimal  `json:"oldRate"`           // nil when the currency had no rate yet
	NewRate           *decimal.Decimal  `json:"newRate"`           // nil on failure
	RateChangePercent *decimal.Decimal  `json:"rateChangePercent"` // nil when OldRate is absent or zero
	Source            string            `json:"source"`            // winning source, or the attempted chain on failure
	Status            UpdateStatus      `json:"status"`
	ErrorMessage      *string           `json:"errorMessage"`
	TriggeredBy       UpdateTrigger     `json:"triggeredBy"`
	TriggeredByUserID *string           `json:"triggeredByUserID"` // non-nil only when TriggeredBy is admin
	Metadata          map[string]string `json:"metadata"`          // e.g. fetch duration
	CreatedAt         time.Time         `json:"createdAt"`
}

// FailedUpdate is the per-currency failure detail aggregated into a single
// admin notification at the end of a tick.
type FailedUpdate struct {
	CurrencyCode string `json:"currencyCode"`
	ErrorMessage string `json:"errorMessage"`
}

// TickSummary reports the outcome of one refresh pass.
type TickSummary struct {
	StartedAt time.Time      `json:"startedAt"`
	Attempted int            `json:"attempted"`
	Succeeded []string       `json:"succeeded"`
	Failed    []FailedUpdate `json:"failed"`
}
