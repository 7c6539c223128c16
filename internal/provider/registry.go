package provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// ErrUnexpectedData is returned by FetchAs when a provider hands back a
// payload of the wrong type for its model.
var ErrUnexpectedData = errors.New("unexpected data type from provider")

// Registry routes model requests to providers. Each model has an ordered
// chain of provider names; the head of the chain is the default and the
// rest are tried in order by FetchWithFallback. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	chains    map[ModelType][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		chains:    make(map[ModelType][]string),
	}
}

// Register adds p. Providers are appended to the chain of every model they
// serve, so registration order is fallback order. Registering a name again
// replaces the provider but keeps its chain positions.
func (r *Registry) Register(p Provider) error {
	name := p.Info().Name
	if strings.TrimSpace(name) == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[name] = p
	for _, m := range p.SupportedModels() {
		if !slices.Contains(r.chains[m], name) {
			r.chains[m] = append(r.chains[m], name)
		}
	}
	return nil
}

// Unregister removes a provider and drops it from every chain.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.providers, name)
	for m, chain := range r.chains {
		chain = slices.DeleteFunc(chain, func(n string) bool { return n == name })
		if len(chain) == 0 {
			delete(r.chains, m)
			continue
		}
		r.chains[m] = chain
	}
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns the info of every provider, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	slices.SortFunc(infos, func(a, b ProviderInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos
}

// ProvidersFor returns the fallback chain for model, default first.
func (r *Registry) ProvidersFor(model ModelType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.chains[model])
}

// DefaultProvider returns the head of the chain for model.
func (r *Registry) DefaultProvider(model ModelType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := r.chains[model]
	if len(chain) == 0 {
		return "", false
	}
	return chain[0], true
}

// SetDefault moves name to the head of the chain for model.
func (r *Registry) SetDefault(model ModelType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[name]
	if !ok {
		return &ErrProviderNotFound{Name: name}
	}
	if p.Fetcher(model) == nil {
		return &ErrModelNotSupported{Provider: name, Model: model}
	}

	chain := slices.DeleteFunc(r.chains[model], func(n string) bool { return n == name })
	r.chains[model] = append([]string{name}, chain...)
	return nil
}

// ModelCoverage returns a copy of every model's chain.
func (r *Registry) ModelCoverage() map[ModelType][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[ModelType][]string, len(r.chains))
	for m, chain := range r.chains {
		out[m] = slices.Clone(chain)
	}
	return out
}

// Fetch asks a single provider for model: the one named by the
// ParamProvider override, else the default.
func (r *Registry) Fetch(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	name := params[ParamProvider]
	if name == "" {
		name, _ = r.DefaultProvider(model)
	}
	return r.fetchFrom(ctx, name, model, params)
}

// FetchWithFallback walks the chain for model, starting with the
// ParamProvider override when one is set, and returns the first success.
// When every provider fails the error joins each provider's failure.
func (r *Registry) FetchWithFallback(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	order := r.ProvidersFor(model)
	if preferred := params[ParamProvider]; preferred != "" {
		order = append([]string{preferred}, slices.DeleteFunc(order, func(n string) bool { return n == preferred })...)
	}
	if len(order) == 0 {
		return nil, &ErrProviderNotFound{Name: params[ParamProvider]}
	}

	var errs []error
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := r.fetchFrom(ctx, name, model, params)
		if err == nil {
			return res, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("all providers failed for %s: %w", model, errors.Join(errs...))
}

func (r *Registry) fetchFrom(ctx context.Context, name string, model ModelType, params QueryParams) (*FetchResult, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	f := p.Fetcher(model)
	if f == nil {
		return nil, &ErrModelNotSupported{Provider: name, Model: model}
	}
	if err := ValidateParams(params, f.RequiredParams()); err != nil {
		return nil, err
	}

	res, err := f.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, model, err)
	}
	res.Provider = name
	res.Model = model
	if res.FetchedAt.IsZero() {
		res.FetchedAt = time.Now()
	}
	return res, nil
}

// FetchAs runs FetchWithFallback and asserts the payload is a T.
func FetchAs[T any](ctx context.Context, r *Registry, model ModelType, params QueryParams) (T, *FetchResult, error) {
	var zero T
	res, err := r.FetchWithFallback(ctx, model, params)
	if err != nil {
		return zero, nil, err
	}
	v, ok := res.Data.(T)
	if !ok {
		return zero, res, fmt.Errorf("%s from %s: %w (%T)", model, res.Provider, ErrUnexpectedData, res.Data)
	}
	return v, res, nil
}
