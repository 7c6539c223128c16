// Package datasource adapts the provider registry to the narrow source
// interfaces the tracker consumes: daily price history, macro series and
// sentiment readings.
package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/pkg/models"
)

// ErrUnexpectedData is returned when a provider hands back a payload of the
// wrong type for its model.
var ErrUnexpectedData = provider.ErrUnexpectedData

// Sources routes tracker requests through a provider registry, falling back
// across providers that serve the same model.
type Sources struct {
	registry *provider.Registry
	log      zerolog.Logger
}

// NewSources creates Sources backed by reg.
func NewSources(reg *provider.Registry, log zerolog.Logger) *Sources {
	return &Sources{
		registry: reg,
		log:      log.With().Str("component", "datasource").Logger(),
	}
}

// Registry returns the provider registry used by these sources.
func (s *Sources) Registry() *provider.Registry {
	return s.registry
}

// historyModel picks the model for a ticker: caret symbols are indices.
func historyModel(symbol string) provider.ModelType {
	if strings.HasPrefix(symbol, "^") {
		return provider.ModelIndexHistorical
	}
	return provider.ModelPriceHistorical
}

// PriceHistory returns up to years of chronological daily bars for symbol.
func (s *Sources) PriceHistory(ctx context.Context, symbol string, years int) ([]models.PriceBar, error) {
	if years <= 0 {
		return nil, fmt.Errorf("price history %s: years must be positive, got %d", symbol, years)
	}
	model := historyModel(symbol)
	params := provider.QueryParams{
		provider.ParamSymbol:   symbol,
		provider.ParamRange:    strconv.Itoa(years) + "y",
		provider.ParamInterval: "1d",
	}

	bars, res, err := provider.FetchAs[[]models.PriceBar](ctx, s.registry, model, params)
	if err != nil {
		return nil, fmt.Errorf("price history %s: %w", symbol, err)
	}

	s.log.Debug().Str("symbol", symbol).Str("provider", res.Provider).
		Int("bars", len(bars)).Bool("cached", res.Cached).Msg("price history")
	return bars, nil
}

// MacroSeries returns the latest limit observations of a series,
// most-recent-first.
func (s *Sources) MacroSeries(ctx context.Context, seriesID string, limit int) (models.TimeSeries, error) {
	params := provider.QueryParams{
		provider.ParamSymbol: seriesID,
		provider.ParamLimit:  strconv.Itoa(limit),
	}

	series, res, err := provider.FetchAs[models.TimeSeries](ctx, s.registry, provider.ModelEconomicSeries, params)
	if err != nil {
		return nil, fmt.Errorf("macro series %s: %w", seriesID, err)
	}

	s.log.Debug().Str("series", seriesID).Str("provider", res.Provider).
		Int("observations", len(series)).Msg("macro series")
	return series, nil
}

// Sentiment returns the latest fear & greed reading for market.
func (s *Sources) Sentiment(ctx context.Context, market string) (models.Sentiment, error) {
	v, res, err := provider.FetchAs[models.Sentiment](ctx, s.registry, provider.ModelSentimentIndex,
		provider.QueryParams{provider.ParamMarket: market})
	if err != nil {
		return models.Sentiment{}, fmt.Errorf("sentiment %s: %w", market, err)
	}
	s.log.Debug().Str("market", market).Str("provider", res.Provider).Int("value", v.Value).Msg("sentiment")
	return v, nil
}
