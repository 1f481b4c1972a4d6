package services

import (
	"context"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateUpdaterSvc runs one refresh pass over the currencies currently due.
type RateUpdaterSvc interface {
	// RunTick attempts an update for every due currency and returns a
	// summary of the pass. A failed currency never aborts the others.
	RunTick(ctx context.Context, trigger domain.UpdateTrigger) (*domain.TickSummary, error)
}

// TransactionPreparerSvc builds the transparency snapshot recorded when a
// ledger transaction is created.
type TransactionPreparerSvc interface {
	// PrepareTransaction converts the entered amount into the ledger
	// currency using the current rate of the entered currency. Called
	// exactly once per transaction, at creation time; its output is
	// persisted verbatim.
	PrepareTransaction(ctx context.Context, enteredAmount decimal.Decimal, enteredCurrency, ledgerCurrency string) (*domain.Transaction, error)
}
