// Package feargreed implements the fear & greed sentiment provider: the CNN
// index for equities and the alternative.me index for crypto. Both are free
// JSON endpoints that need no API key.
package feargreed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/seenimoa/marketpulse/internal/infra"
	"github.com/seenimoa/marketpulse/internal/provider"
)

const (
	providerName = "feargreed"

	defaultCNNURL    = "https://production.dataviz.cnn.io/index/fearandgreed/graphdata"
	defaultCryptoURL = "https://api.alternative.me/fng/?limit=1"
)

// Provider serves provider.ModelSentimentIndex.
type Provider struct {
	provider.BaseProvider
	cnnURL    string
	cryptoURL string
}

// Option customizes a Provider.
type Option func(*Provider)

// WithURLs overrides the stocks and crypto endpoints.
func WithURLs(stocks, crypto string) Option {
	return func(p *Provider) {
		p.cnnURL = stocks
		p.cryptoURL = crypto
	}
}

// New creates the provider and registers its fetcher.
func New(opts ...Option) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Fear & Greed indices - CNN (stocks) and alternative.me (crypto)",
			"https://alternative.me/crypto/fear-and-greed-index/",
			nil,
		),
		cnnURL:    defaultCNNURL,
		cryptoURL: defaultCryptoURL,
	}
	for _, o := range opts {
		o(p)
	}

	p.RegisterFetcher(newSentimentFetcher(p.cnnURL, p.cryptoURL))
	return p
}

// Ping checks the crypto endpoint, the lighter of the two.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, p.cryptoURL, jsonHeaders())
	if err != nil {
		return fmt.Errorf("feargreed ping: %w", err)
	}
	body.Close()
	return nil
}

// CNN rejects requests that do not look like they come from a browser.
func jsonHeaders() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		"Referer":    "https://edition.cnn.com/",
	}
}

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

// titleCase turns "extreme fear" into "Extreme Fear".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
