package repositories

import (
	"context"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
)

// RateUpdateLogReader defines read operations for the rate update audit trail
type RateUpdateLogReader interface {
	// ListLogsByCurrency retrieves log entries for a currency, newest first.
	ListLogsByCurrency(ctx context.Context, currencyCode string, limit, offset int) ([]domain.RateUpdateLog, error)
}

// RateUpdateLogWriter defines write operations for the rate update audit trail
type RateUpdateLogWriter interface {
	// AppendLog persists a new log entry. The store is append-only;
	// entries are never updated or deleted.
	AppendLog(ctx context.Context, entry domain.RateUpdateLog) error
}

// RateUpdateLogRepositoryFacade combines all audit-log repository interfaces
type RateUpdateLogRepositoryFacade interface {
	RateUpdateLogReader
	RateUpdateLogWriter
}
