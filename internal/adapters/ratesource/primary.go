package ratesource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/ports"
	"github.com/shopspring/decimal"
)

const (
	primarySourceName   = "primary"
	defaultFetchTimeout = 10 * time.Second
	maxResponseBytes    = 1 << 20
)

// rateValuePattern extracts the quoted rate from the provider's
// semi-structured markup, e.g. `data-rate="32.4512"`.
var rateValuePattern = regexp.MustCompile(`data-rate="([0-9]+(?:\.[0-9]+)?)"`)

// PrimaryOptions parameterise the scrape-based source.
type PrimaryOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Primary scrapes a single numeric rate out of the provider's page for the
// requested currency. A response that parses but contains no rate yields
// apperrors.ErrNoRateFound so the chain can tell "source answered but had
// nothing" apart from "source is down".
type Primary struct {
	opts   PrimaryOptions
	client *http.Client
}

// NewPrimary builds the scrape-based source.
func NewPrimary(opts PrimaryOptions) *Primary {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Primary{
		opts:   opts,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the source in audit log entries.
func (p *Primary) Name() string {
	return primarySourceName
}

// Fetch scrapes the rate for the given currency code.
func (p *Primary) Fetch(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	if p.opts.BaseURL == "" {
		return decimal.Decimal{}, fmt.Errorf("primary rate source url not configured")
	}

	timeout := p.opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s?currency=%s", p.opts.BaseURL, url.QueryEscape(currencyCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("create primary source request: %w", err)
	}
	if p.opts.UserAgent != "" {
		req.Header.Set("User-Agent", p.opts.UserAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("primary source request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Decimal{}, fmt.Errorf("primary source returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("read primary source response: %w", err)
	}

	match := rateValuePattern.FindSubmatch(body)
	if match == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: primary source response carried no rate for %s", apperrors.ErrNoRateFound, currencyCode)
	}

	rate, err := decimal.NewFromString(string(match[1]))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: primary source rate %q is not numeric", apperrors.ErrNoRateFound, match[1])
	}
	return rate, nil
}

var _ ports.RateSource = (*Primary)(nil)
