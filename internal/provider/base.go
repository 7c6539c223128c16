package provider

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/seenimoa/marketpulse/internal/infra"
)

// BaseFetcher carries a fetcher's metadata plus a per-run cache and a
// token-bucket limiter. Concrete fetchers embed it and implement Fetch on
// top of Load.
type BaseFetcher struct {
	model       ModelType
	description string
	required    []string
	optional    []string
	cache       *infra.Cache
	limiter     *infra.RateLimiter
}

// FetcherOption tunes a BaseFetcher.
type FetcherOption func(*fetcherConfig)

type fetcherConfig struct {
	cacheTTL   time.Duration
	rateLimit  int
	rateWindow time.Duration
}

// WithCacheTTL sets how long fetched payloads are reused.
func WithCacheTTL(ttl time.Duration) FetcherOption {
	return func(c *fetcherConfig) { c.cacheTTL = ttl }
}

// WithRateLimit allows n upstream requests per window.
func WithRateLimit(n int, window time.Duration) FetcherOption {
	return func(c *fetcherConfig) {
		c.rateLimit = n
		c.rateWindow = window
	}
}

// NewBaseFetcher creates a base fetcher. Without options payloads are cached
// for five minutes and upstream calls are limited to 10/s.
func NewBaseFetcher(model ModelType, desc string, required, optional []string, opts ...FetcherOption) BaseFetcher {
	cfg := fetcherConfig{cacheTTL: 5 * time.Minute, rateLimit: 10, rateWindow: time.Second}
	for _, o := range opts {
		o(&cfg)
	}
	return BaseFetcher{
		model:       model,
		description: desc,
		required:    required,
		optional:    optional,
		cache:       infra.NewCache(cfg.cacheTTL),
		limiter:     infra.NewRateLimiter(cfg.rateLimit, cfg.rateWindow),
	}
}

func (b *BaseFetcher) ModelType() ModelType     { return b.model }
func (b *BaseFetcher) Description() string      { return b.description }
func (b *BaseFetcher) RequiredParams() []string { return b.required }
func (b *BaseFetcher) OptionalParams() []string { return b.optional }

// CacheGet returns a cached payload.
func (b *BaseFetcher) CacheGet(key string) (any, bool) { return b.cache.Get(key) }

// CacheSet caches a payload with the fetcher's TTL.
func (b *BaseFetcher) CacheSet(key string, value any) { b.cache.Set(key, value) }

// RateLimit blocks until an upstream request may be made.
func (b *BaseFetcher) RateLimit(ctx context.Context) error { return b.limiter.Wait(ctx) }

// Load answers params from the cache when possible. Otherwise it waits for
// a rate-limit slot, calls load and caches a successful payload.
func (b *BaseFetcher) Load(ctx context.Context, params QueryParams, load func(context.Context) (any, error)) (*FetchResult, error) {
	key := CacheKey(b.model, params)
	if v, ok := b.cache.Get(key); ok {
		return &FetchResult{Data: v, FetchedAt: time.Now(), Cached: true}, nil
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	b.cache.Set(key, v)
	return &FetchResult{Data: v, FetchedAt: time.Now()}, nil
}

// CacheKey builds a stable key from the model and params. The provider
// override and "_" internal keys are left out so fallbacks share entries
// and secrets never appear in keys.
func CacheKey(model ModelType, params QueryParams) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == ParamProvider || strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	sb.WriteString(string(model))
	for _, k := range keys {
		sb.WriteString(":" + k + "=" + params[k])
	}
	return sb.String()
}

// BaseProvider implements Provider bookkeeping. Concrete providers embed it,
// register their fetchers and override Ping.
type BaseProvider struct {
	info        ProviderInfo
	fetchers    map[ModelType]Fetcher
	credentials map[string]string
}

// NewBaseProvider creates a provider with no fetchers.
func NewBaseProvider(name, description, website string, creds []ProviderCredential) BaseProvider {
	return BaseProvider{
		info: ProviderInfo{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		fetchers:    make(map[ModelType]Fetcher),
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() ProviderInfo { return bp.info }

// Init stores credentials after checking every required one is present.
func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, c := range bp.info.Credentials {
		if c.Required && credentials[c.Name] == "" {
			return &ErrInvalidCredentials{
				Provider: bp.info.Name,
				Detail:   "missing required credential: " + c.Name,
			}
		}
	}
	bp.credentials = credentials
	return nil
}

func (bp *BaseProvider) Fetcher(model ModelType) Fetcher { return bp.fetchers[model] }

// SupportedModels lists the served models, sorted.
func (bp *BaseProvider) SupportedModels() []ModelType {
	out := make([]ModelType, 0, len(bp.fetchers))
	for m := range bp.fetchers {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

func (bp *BaseProvider) Ping(context.Context) error { return nil }

// RegisterFetcher serves f's model from this provider.
func (bp *BaseProvider) RegisterFetcher(f Fetcher) {
	bp.fetchers[f.ModelType()] = f
	bp.info.Models = bp.SupportedModels()
}

// Credential returns a stored credential.
func (bp *BaseProvider) Credential(name string) string { return bp.credentials[name] }
