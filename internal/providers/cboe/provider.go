// Package cboe implements a CBOE (Chicago Board Options Exchange) data provider.
// CBOE offers free delayed market data via its CDN JSON APIs, no API key
// required. It backs up Yahoo Finance for index history, ^VIX in particular.
package cboe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/marketpulse/internal/infra"
	"github.com/seenimoa/marketpulse/internal/provider"
)

const (
	providerName = "cboe"

	// CDN base URL.
	defaultBaseURL = "https://cdn.cboe.com/api/global/delayed_quotes"
)

// Provider is the CBOE data provider.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// Option customizes a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at another delayed-quotes CDN root.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// New creates a new CBOE provider and registers its fetchers.
func New(opts ...Option) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"CBOE - Chicago Board Options Exchange, free delayed market data",
			"https://www.cboe.com",
			nil, // no credentials required
		),
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(p)
	}

	p.RegisterFetcher(newIndexHistoricalFetcher(p.baseURL))
	return p
}

// Ping verifies connectivity to CBOE by fetching the VIX chart.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := fetchCBOERaw(ctx, chartURL(p.baseURL, symbolPath("^VIX"))); err != nil {
		return fmt.Errorf("cboe ping: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// URL builders.
// ---------------------------------------------------------------------------

// symbolPath returns the CDN path segment for an index: the caret is
// dropped and an underscore prefix added.
func symbolPath(sym string) string {
	sym = strings.ToUpper(strings.TrimPrefix(sym, "^"))
	return "_" + sym
}

// chartURL returns the daily historical chart URL.
func chartURL(base, symPath string) string {
	return base + "/charts/historical/" + symPath + ".json"
}

// ---------------------------------------------------------------------------
// HTTP helpers.
// ---------------------------------------------------------------------------

var cboeHeaders = map[string]string{
	"Accept":          "application/json",
	"Accept-Language": "en-US,en;q=0.9",
}

// fetchCBOERaw fetches a CBOE endpoint and returns the raw bytes.
func fetchCBOERaw(ctx context.Context, url string) ([]byte, error) {
	body, _, err := infra.DoGet(ctx, url, cboeHeaders)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// parseCBOEDate parses the CDN's YYYY-MM-DD dates.
func parseCBOEDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// decode is json.Unmarshal with a CBOE-flavoured error.
func decode(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("cboe: parse daily chart: %w", err)
	}
	return nil
}
