// Package provider is the data provider layer: a Provider owns one Fetcher
// per model it serves, and a Registry routes each model request along an
// ordered fallback chain of providers.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderCredential describes one secret a provider needs.
type ProviderCredential struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"`
}

// ProviderInfo is the static description shown by `marketpulse providers`.
type ProviderInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"`
}

// Provider is a market or macro data source.
type Provider interface {
	Info() ProviderInfo
	// Init stores credentials; it fails when a required one is missing.
	Init(credentials map[string]string) error
	// Fetcher returns nil when the model is not served.
	Fetcher(model ModelType) Fetcher
	SupportedModels() []ModelType
	// Ping checks that the upstream answers with the configured credentials.
	Ping(ctx context.Context) error
}

// QueryParams are the string parameters of a fetch. Fetchers declare the
// keys they need; keys prefixed with "_" are internal and never cached on.
type QueryParams map[string]string

const (
	ParamSymbol    = "symbol"     // ticker or series id: SPY, ^VIX, WALCL
	ParamRange     = "range"      // history span: 5y, 2y
	ParamStartDate = "start_date" // YYYY-MM-DD
	ParamInterval  = "interval"   // bar size: 1d
	ParamLimit     = "limit"      // max observations
	ParamMarket    = "market"     // stocks or crypto
	ParamProvider  = "provider"   // route to this provider first
)

// FetchResult carries a payload and where it came from. Data is
// []models.PriceBar for the historical models, models.TimeSeries for
// EconomicSeries and models.Sentiment for SentimentIndex.
type FetchResult struct {
	Provider  string    `json:"provider"`
	Model     ModelType `json:"model"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// Fetcher retrieves one model from one provider.
type Fetcher interface {
	ModelType() ModelType
	Description() string
	RequiredParams() []string
	OptionalParams() []string
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound reports an unknown provider name, or a model nobody
// serves when Name is empty.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	if e.Name == "" {
		return "no provider registered"
	}
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported reports a provider asked for a model it lacks.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not serve %s", e.Provider, e.Model)
}

// ErrMissingParam reports a required query parameter left empty.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials reports a missing or rejected credential.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("%s: invalid credentials: %s", e.Provider, e.Detail)
}

// ValidateParams returns ErrMissingParam for the first required key that is
// absent or empty.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if params[key] == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
