// Package providers initializes and registers all concrete data providers
// with a provider registry.
package providers

import (
	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/internal/providers/cboe"
	"github.com/seenimoa/marketpulse/internal/providers/feargreed"
	"github.com/seenimoa/marketpulse/internal/providers/fred"
	"github.com/seenimoa/marketpulse/internal/providers/yfinance"
)

// Credentials holds provider secrets keyed by provider name, then by
// credential name (e.g. creds["fred"]["api_key"]).
type Credentials map[string]map[string]string

// RegisterAll creates and registers all available providers with reg.
// Registration order sets the default provider per model: Yahoo Finance
// serves index history first and CBOE is its fallback. Providers that
// require API keys are only registered when the key is present.
func RegisterAll(reg *provider.Registry, creds Credentials) error {
	free := []provider.Provider{
		yfinance.New(),
		cboe.New(),
		feargreed.New(),
	}
	for _, p := range free {
		if err := p.Init(nil); err != nil {
			return err
		}
		if err := reg.Register(p); err != nil {
			return err
		}
	}

	// --- FRED (requires API key) ---
	if key := creds["fred"]["api_key"]; key != "" {
		fp := fred.New()
		if err := fp.Init(creds["fred"]); err != nil {
			return err
		}
		if err := reg.Register(fp); err != nil {
			return err
		}
	}

	return nil
}
