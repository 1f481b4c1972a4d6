package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/ports"
	"github.com/shopspring/decimal"
)

const (
	secondarySourceName = "secondary"
	secondaryCacheTTL   = 30 * time.Second
)

// SecondaryOptions parameterise the REST-API-based source.
type SecondaryOptions struct {
	BaseURL      string
	BaseCurrency string
	APIKey       string
	Timeout      time.Duration

	// CacheTTL bounds how long a downloaded rate map is reused before the
	// next Fetch hits the provider again. Zero means secondaryCacheTTL.
	CacheTTL time.Duration
}

// Secondary fetches a keyed currency->rate map from a REST provider. A
// missing key for the requested currency is a normal, recoverable non-match,
// not a fatal chain error.
//
// The provider returns every rate in one response, so the decoded map is
// memoized briefly: an update pass looking up many currencies costs one
// download, not one per currency.
type Secondary struct {
	opts   SecondaryOptions
	client *http.Client

	mu        sync.Mutex
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewSecondary builds the REST-API-based source.
func NewSecondary(opts SecondaryOptions) *Secondary {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = secondaryCacheTTL
	}
	return &Secondary{
		opts:   opts,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the source in audit log entries.
func (s *Secondary) Name() string {
	return secondarySourceName
}

type ratesPayload struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Fetch resolves the rate for the given currency code from the provider's
// rate map.
func (s *Secondary) Fetch(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	if s.opts.BaseURL == "" {
		return decimal.Decimal{}, fmt.Errorf("secondary rate source url not configured")
	}

	if rates := s.cachedRates(); rates != nil {
		return lookupRate(rates, currencyCode)
	}

	timeout := s.opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/latest?base=%s", s.opts.BaseURL, url.QueryEscape(s.opts.BaseCurrency))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("create secondary source request: %w", err)
	}
	if s.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("secondary source request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Decimal{}, fmt.Errorf("secondary source returned status %d", resp.StatusCode)
	}

	var payload ratesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode secondary source response: %w", err)
	}

	s.mu.Lock()
	s.rates = payload.Rates
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return lookupRate(payload.Rates, currencyCode)
}

// cachedRates returns the memoized rate map, or nil once it has aged out.
func (s *Secondary) cachedRates() map[string]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rates == nil || time.Since(s.fetchedAt) >= s.opts.CacheTTL {
		return nil
	}
	return s.rates
}

func lookupRate(rates map[string]decimal.Decimal, currencyCode string) (decimal.Decimal, error) {
	rate, ok := rates[currencyCode]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: secondary source carries no rate for %s", apperrors.ErrNoRateFound, currencyCode)
	}
	return rate, nil
}

var _ ports.RateSource = (*Secondary)(nil)
