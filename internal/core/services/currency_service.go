package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	portsrepo "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/repositories"
	"github.com/oguzbenturk/ukcworld-rates/internal/dto"
	"github.com/oguzbenturk/ukcworld-rates/internal/utils/money"
	"github.com/shopspring/decimal"
)

const (
	defaultLogListLimit = 50
	maxLogListLimit     = 100
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// CurrencyService is the registry of supported currencies and their rate
// state. ApplyRateUpdate and SetRateManually are the only writers of
// rate/lastUpdatedAt; both append an audit log entry in the same database
// transaction as the registry write.
type CurrencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	logRepo      portsrepo.RateUpdateLogRepositoryFacade
	locks        *keyedLocks
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade, logRepo portsrepo.RateUpdateLogRepositoryFacade) *CurrencyService {
	return &CurrencyService{
		currencyRepo: currencyRepo,
		logRepo:      logRepo,
		locks:        newKeyedLocks(),
	}
}

func validateCurrencyCode(code string) error {
	if !currencyCodePattern.MatchString(code) {
		return fmt.Errorf("%w: currency code must be exactly 3 uppercase letters, got %q", apperrors.ErrValidation, code)
	}
	return nil
}

// CreateCurrency persists a new currency with its rate configuration.
func (s *CurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	if err := validateCurrencyCode(req.CurrencyCode); err != nil {
		return nil, err
	}

	rate := decimal.Zero
	if req.IsBase {
		// The base currency's rate is defined as 1 and it is never a
		// target of auto-update.
		rate = decimal.NewFromInt(1)
		if req.AutoUpdateEnabled {
			return nil, fmt.Errorf("%w: the base currency cannot have auto-update enabled", apperrors.ErrValidation)
		}
		// There is exactly one base currency at any time; a second one
		// would make every stored rate ambiguous.
		if existing, err := s.currencyRepo.FindBaseCurrency(ctx); err == nil {
			return nil, fmt.Errorf("%w: base currency %s already exists", apperrors.ErrValidation, existing.CurrencyCode)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check for an existing base currency: %w", err)
		}
	} else if req.Rate != nil {
		if req.Rate.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: rate must be a positive number", apperrors.ErrValidation)
		}
		rate = *req.Rate
	}

	frequency := req.UpdateFrequencyHours
	if frequency == 0 {
		frequency = 24
	}
	if !domain.IsAllowedFrequency(frequency) {
		return nil, fmt.Errorf("%w: updateFrequencyHours must be one of %v, got %d", apperrors.ErrValidation, domain.UpdateFrequencies, req.UpdateFrequencyHours)
	}

	now := time.Now().UTC()
	currency := domain.Currency{
		CurrencyCode:         req.CurrencyCode,
		Symbol:               req.Symbol,
		Name:                 req.Name,
		IsBase:               req.IsBase,
		Rate:                 rate,
		AutoUpdateEnabled:    req.AutoUpdateEnabled,
		UpdateFrequencyHours: frequency,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}

	return &currency, nil
}

// GetCurrencyByCode retrieves a currency by its 3-letter code.
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	if err := validateCurrencyCode(currencyCode); err != nil {
		return nil, err
	}
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency %s: %w", currencyCode, err)
	}
	return currency, nil
}

// ListCurrencies retrieves all currencies.
func (s *CurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// ListAutoUpdateCandidates retrieves the currencies eligible for scheduled
// refresh. The base currency and currencies with auto-update disabled are
// never candidates.
func (s *CurrencyService) ListAutoUpdateCandidates(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListAutoUpdateCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-update candidates: %w", err)
	}
	candidates := make([]domain.Currency, 0, len(currencies))
	for _, c := range currencies {
		if c.IsBase || !c.AutoUpdateEnabled {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// ListRateUpdateLogs retrieves the audit trail for a currency, newest first.
// Limit defaults to 50 and is capped at 100 regardless of what the caller
// asked for.
func (s *CurrencyService) ListRateUpdateLogs(ctx context.Context, currencyCode string, limit, offset int) ([]domain.RateUpdateLog, error) {
	if err := validateCurrencyCode(currencyCode); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLogListLimit
	}
	if limit > maxLogListLimit {
		limit = maxLogListLimit
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.logRepo.ListLogsByCurrency(ctx, currencyCode, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate update logs for %s: %w", currencyCode, err)
	}
	if entries == nil {
		return []domain.RateUpdateLog{}, nil
	}
	return entries, nil
}

// ApplyRateUpdate records a successful fetch: the registry write and the
// audit append happen in one database transaction, serialized per currency
// code.
func (s *CurrencyService) ApplyRateUpdate(ctx context.Context, currencyCode string, newRate decimal.Decimal, source string, trigger domain.UpdateTrigger, metadata map[string]string) (*domain.Currency, error) {
	if err := validateCurrencyCode(currencyCode); err != nil {
		return nil, err
	}
	if newRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: fetched rate %s for %s is not positive", apperrors.ErrInvalidRate, newRate, currencyCode)
	}

	lock := s.locks.forKey(currencyCode)
	lock.Lock()
	defer lock.Unlock()

	return s.applyRateLocked(ctx, currencyCode, newRate, source, trigger, nil, metadata)
}

// SetRateManually applies an admin rate override, bypassing the fetch chain.
func (s *CurrencyService) SetRateManually(ctx context.Context, currencyCode string, rate decimal.Decimal, adminUserID string) (*domain.Currency, error) {
	if err := validateCurrencyCode(currencyCode); err != nil {
		return nil, err
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: rate must be a positive number, got %s", apperrors.ErrValidation, rate)
	}
	if adminUserID == "" {
		return nil, fmt.Errorf("%w: admin user ID is required for a manual rate override", apperrors.ErrValidation)
	}

	lock := s.locks.forKey(currencyCode)
	lock.Lock()
	defer lock.Unlock()

	return s.applyRateLocked(ctx, currencyCode, rate, "manual", domain.TriggerAdmin, &adminUserID, nil)
}

// applyRateLocked performs the shared rate write path. Callers must hold the
// per-code lock.
func (s *CurrencyService) applyRateLocked(ctx context.Context, currencyCode string, newRate decimal.Decimal, source string, trigger domain.UpdateTrigger, userID *string, metadata map[string]string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency %s for rate update: %w", currencyCode, err)
	}
	if currency.IsBase {
		return nil, fmt.Errorf("%w: the base currency's rate is fixed at 1 and cannot be updated", apperrors.ErrValidation)
	}

	var oldRate *decimal.Decimal
	if !currency.Rate.IsZero() {
		r := currency.Rate
		oldRate = &r
	}

	now := time.Now().UTC()
	entry := domain.RateUpdateLog{
		LogID:             uuid.NewString(),
		CurrencyCode:      currencyCode,
		OldRate:           oldRate,
		NewRate:           &newRate,
		RateChangePercent: money.PercentChange(currency.Rate, newRate),
		Source:            source,
		Status:            domain.UpdateSuccess,
		TriggeredBy:       trigger,
		TriggeredByUserID: userID,
		Metadata:          metadata,
		CreatedAt:         now,
	}

	if err := s.currencyRepo.UpdateRateWithLog(ctx, currencyCode, newRate, now, entry); err != nil {
		return nil, fmt.Errorf("failed to apply rate update for %s: %w", currencyCode, err)
	}

	s.LogInfo(ctx, "Currency rate updated",
		slog.String("currency_code", currencyCode),
		slog.String("new_rate", newRate.String()),
		slog.String("source", source),
		slog.String("triggered_by", string(trigger)),
	)

	currency.Rate = newRate
	currency.LastUpdatedAt = &now
	currency.AuditFields.LastUpdatedAt = now
	if userID != nil {
		currency.LastUpdatedBy = *userID
	}
	return currency, nil
}

// RecordFailedUpdate appends a failed audit entry. The currency itself is
// never mutated on failure.
func (s *CurrencyService) RecordFailedUpdate(ctx context.Context, currencyCode string, source string, trigger domain.UpdateTrigger, errMsg string, metadata map[string]string) error {
	if err := validateCurrencyCode(currencyCode); err != nil {
		return err
	}

	var oldRate *decimal.Decimal
	if currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode); err == nil && !currency.Rate.IsZero() {
		r := currency.Rate
		oldRate = &r
	}

	entry := domain.RateUpdateLog{
		LogID:        uuid.NewString(),
		CurrencyCode: currencyCode,
		OldRate:      oldRate,
		Source:       source,
		Status:       domain.UpdateFailed,
		ErrorMessage: &errMsg,
		TriggeredBy:  trigger,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.logRepo.AppendLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to record failed update for %s: %w", currencyCode, err)
	}
	return nil
}

// SetAutoUpdate toggles scheduled refresh for a currency.
func (s *CurrencyService) SetAutoUpdate(ctx context.Context, currencyCode string, enabled bool, userID string) (*domain.Currency, error) {
	if err := validateCurrencyCode(currencyCode); err != nil {
		return nil, err
	}

	lock := s.locks.forKey(currencyCode)
	lock.Lock()
	defer lock.Unlock()

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency %s: %w", currencyCode, err)
	}
	if currency.IsBase && enabled {
		return nil, fmt.Errorf("%w: the base currency cannot have auto-update enabled", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	if err := s.currencyRepo.SetAutoUpdate(ctx, currencyCode, enabled, userID, now); err != nil {
		return nil, fmt.Errorf("failed to set auto-update for %s: %w", currencyCode, err)
	}

	currency.AutoUpdateEnabled = enabled
	currency.AuditFields.LastUpdatedAt = now
	currency.LastUpdatedBy = userID
	return currency, nil
}

// SetUpdateFrequency changes the refresh interval for a currency.
func (s *CurrencyService) SetUpdateFrequency(ctx context.Context, currencyCode string, hours int, userID string) (*domain.Currency, error) {
	if err := validateCurrencyCode(currencyCode); err != nil {
		return nil, err
	}
	if !domain.IsAllowedFrequency(hours) {
		return nil, fmt.Errorf("%w: updateFrequencyHours must be one of %v, got %d", apperrors.ErrValidation, domain.UpdateFrequencies, hours)
	}

	lock := s.locks.forKey(currencyCode)
	lock.Lock()
	defer lock.Unlock()

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency %s: %w", currencyCode, err)
	}

	now := time.Now().UTC()
	if err := s.currencyRepo.SetUpdateFrequency(ctx, currencyCode, hours, userID, now); err != nil {
		return nil, fmt.Errorf("failed to set update frequency for %s: %w", currencyCode, err)
	}

	currency.UpdateFrequencyHours = hours
	currency.AuditFields.LastUpdatedAt = now
	currency.LastUpdatedBy = userID
	return currency, nil
}
