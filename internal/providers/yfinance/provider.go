// Package yfinance implements the Yahoo Finance data provider.
// It wraps Yahoo Finance's public v8 chart API into the standard
// provider/fetcher framework.
//
// Yahoo Finance is a free, no-API-key provider that covers equities,
// ETFs, indices, crypto, currencies and futures worldwide.
package yfinance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/seenimoa/marketpulse/internal/infra"
	"github.com/seenimoa/marketpulse/internal/provider"
)

const (
	providerName   = "yfinance"
	defaultBaseURL = "https://query1.finance.yahoo.com"
)

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// Option customizes a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at another chart endpoint host.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// New creates a new YFinance provider and registers its fetchers.
func New(opts ...Option) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free global financial data",
			"https://finance.yahoo.com",
			nil, // no credentials required
		),
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(p)
	}

	p.RegisterFetcher(newHistoryFetcher(provider.ModelPriceHistorical, p.baseURL,
		"Daily OHLCV history for stocks, ETFs, crypto and futures"))
	p.RegisterFetcher(newHistoryFetcher(provider.ModelIndexHistorical, p.baseURL,
		"Daily OHLCV history for indices such as ^VIX and ^GSPC"))

	return p
}

// Ping checks connectivity to Yahoo Finance.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, chartURL(p.baseURL, "SPY", "5d", "1d"), jsonHeaders())
	if err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// chartURL builds a v8 chart request for a ticker.
func chartURL(base, ticker, rng, interval string) string {
	return fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s&includeAdjustedClose=true",
		base, url.PathEscape(ticker), url.QueryEscape(rng), url.QueryEscape(interval))
}

// fetchJSON performs a GET request and decodes the response into dest.
func fetchJSON(ctx context.Context, url string, dest any) error {
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}
