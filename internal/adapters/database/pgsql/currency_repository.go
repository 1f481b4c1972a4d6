package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	portsrepo "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// PgxCurrencyRepository implements the currency repository ports using pgxpool.
type PgxCurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository creates a new repository for currency data.
func NewCurrencyRepository(pool *pgxpool.Pool) *PgxCurrencyRepository {
	return &PgxCurrencyRepository{pool: pool}
}

const currencyColumns = `currency_code, symbol, name, is_base, rate, auto_update_enabled, update_frequency_hours, last_rate_update_at, created_at, created_by, last_updated_at, last_updated_by`

func scanCurrency(row pgx.Row) (domain.Currency, error) {
	var currency domain.Currency
	err := row.Scan(
		&currency.CurrencyCode,
		&currency.Symbol,
		&currency.Name,
		&currency.IsBase,
		&currency.Rate,
		&currency.AutoUpdateEnabled,
		&currency.UpdateFrequencyHours,
		&currency.LastUpdatedAt,
		&currency.CreatedAt,
		&currency.CreatedBy,
		&currency.AuditFields.LastUpdatedAt,
		&currency.LastUpdatedBy,
	)
	return currency, err
}

// SaveCurrency inserts a new currency.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	query := `
		INSERT INTO currencies (` + currencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		currency.CurrencyCode,
		currency.Symbol,
		currency.Name,
		currency.IsBase,
		currency.Rate,
		currency.AutoUpdateEnabled,
		currency.UpdateFrequencyHours,
		currency.LastUpdatedAt,
		currency.CreatedAt,
		currency.CreatedBy,
		currency.AuditFields.LastUpdatedAt,
		currency.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("currency %s: %w", currency.CurrencyCode, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save currency %s: %w", currency.CurrencyCode, err)
	}
	return nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE currency_code = $1;`
	currency, err := scanCurrency(r.pool.QueryRow(ctx, query, currencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", currencyCode, err)
	}
	return &currency, nil
}

// FindBaseCurrency retrieves the single base currency, if one exists.
func (r *PgxCurrencyRepository) FindBaseCurrency(ctx context.Context) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE is_base;`
	currency, err := scanCurrency(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find base currency: %w", err)
	}
	return &currency, nil
}

// ListCurrencies retrieves all currencies.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies ORDER BY currency_code;`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	currencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Currency, error) {
		return scanCurrency(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}
	return currencies, nil
}

// ListAutoUpdateCandidates retrieves currencies eligible for scheduled
// refresh: auto-update enabled and not the base currency.
func (r *PgxCurrencyRepository) ListAutoUpdateCandidates(ctx context.Context) ([]domain.Currency, error) {
	query := `
		SELECT ` + currencyColumns + `
		FROM currencies
		WHERE auto_update_enabled AND NOT is_base
		ORDER BY currency_code;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query auto-update candidates: %w", err)
	}
	defer rows.Close()

	currencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Currency, error) {
		return scanCurrency(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan auto-update candidates: %w", err)
	}
	return currencies, nil
}

// UpdateRateWithLog sets the currency's rate and last update timestamp and
// appends the audit log entry in one database transaction, so a reader never
// observes a rate change without its audit entry or vice versa.
func (r *PgxCurrencyRepository) UpdateRateWithLog(ctx context.Context, currencyCode string, newRate decimal.Decimal, updatedAt time.Time, entry domain.RateUpdateLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rate update transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE currencies
		SET rate = $2, last_rate_update_at = $3, last_updated_at = $3
		WHERE currency_code = $1;
	`, currencyCode, newRate, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update rate for %s: %w", currencyCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := insertLogEntry(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rate update for %s: %w", currencyCode, err)
	}
	return nil
}

// SetAutoUpdate toggles the auto-update flag for a currency.
func (r *PgxCurrencyRepository) SetAutoUpdate(ctx context.Context, currencyCode string, enabled bool, updatedBy string, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE currencies
		SET auto_update_enabled = $2, last_updated_at = $3, last_updated_by = $4
		WHERE currency_code = $1;
	`, currencyCode, enabled, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to set auto-update for %s: %w", currencyCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetUpdateFrequency changes the configured refresh interval for a currency.
func (r *PgxCurrencyRepository) SetUpdateFrequency(ctx context.Context, currencyCode string, hours int, updatedBy string, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE currencies
		SET update_frequency_hours = $2, last_updated_at = $3, last_updated_by = $4
		WHERE currency_code = $1;
	`, currencyCode, hours, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to set update frequency for %s: %w", currencyCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)
