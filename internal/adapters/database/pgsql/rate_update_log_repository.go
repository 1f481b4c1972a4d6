package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	portsrepo "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// PgxRateUpdateLogRepository implements the audit-log repository ports using
// pgxpool. The rate_update_logs table is append-only: the repository exposes
// no update or delete operations.
type PgxRateUpdateLogRepository struct {
	pool *pgxpool.Pool
}

// NewRateUpdateLogRepository creates a new repository for the rate update
// audit trail.
func NewRateUpdateLogRepository(pool *pgxpool.Pool) *PgxRateUpdateLogRepository {
	return &PgxRateUpdateLogRepository{pool: pool}
}

// execer lets the insert run against either the pool or an open transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertLogEntry(ctx context.Context, db execer, entry domain.RateUpdateLog) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal log metadata: %w", err)
	}

	query := `
		INSERT INTO rate_update_logs (
			log_id, currency_code, old_rate, new_rate, rate_change_percent,
			source, status, error_message, triggered_by, triggered_by_user_id,
			metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = db.Exec(ctx, query,
		entry.LogID,
		entry.CurrencyCode,
		entry.OldRate,
		entry.NewRate,
		entry.RateChangePercent,
		entry.Source,
		string(entry.Status),
		entry.ErrorMessage,
		string(entry.TriggeredBy),
		entry.TriggeredByUserID,
		metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append rate update log entry: %w", err)
	}
	return nil
}

// AppendLog persists a new audit entry.
func (r *PgxRateUpdateLogRepository) AppendLog(ctx context.Context, entry domain.RateUpdateLog) error {
	return insertLogEntry(ctx, r.pool, entry)
}

// ListLogsByCurrency retrieves log entries for a currency, newest first.
func (r *PgxRateUpdateLogRepository) ListLogsByCurrency(ctx context.Context, currencyCode string, limit, offset int) ([]domain.RateUpdateLog, error) {
	query := `
		SELECT log_id, currency_code, old_rate, new_rate, rate_change_percent,
		       source, status, error_message, triggered_by, triggered_by_user_id,
		       metadata, created_at
		FROM rate_update_logs
		WHERE currency_code = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.pool.Query(ctx, query, currencyCode, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate update logs for %s: %w", currencyCode, err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RateUpdateLog, error) {
		var (
			entry         domain.RateUpdateLog
			oldRate       decimal.NullDecimal
			newRate       decimal.NullDecimal
			changePercent decimal.NullDecimal
			status        string
			triggeredBy   string
			metadata      []byte
		)
		err := row.Scan(
			&entry.LogID,
			&entry.CurrencyCode,
			&oldRate,
			&newRate,
			&changePercent,
			&entry.Source,
			&status,
			&entry.ErrorMessage,
			&triggeredBy,
			&entry.TriggeredByUserID,
			&metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return domain.RateUpdateLog{}, err
		}
		if oldRate.Valid {
			entry.OldRate = &oldRate.Decimal
		}
		if newRate.Valid {
			entry.NewRate = &newRate.Decimal
		}
		if changePercent.Valid {
			entry.RateChangePercent = &changePercent.Decimal
		}
		entry.Status = domain.UpdateStatus(status)
		entry.TriggeredBy = domain.UpdateTrigger(triggeredBy)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return domain.RateUpdateLog{}, fmt.Errorf("failed to unmarshal log metadata: %w", err)
			}
		}
		return entry, nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.RateUpdateLog{}, nil
		}
		return nil, fmt.Errorf("failed to scan rate update logs: %w", err)
	}
	return entries, nil
}

var _ portsrepo.RateUpdateLogRepositoryFacade = (*PgxRateUpdateLogRepository)(nil)
