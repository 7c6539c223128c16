package yfinance

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/pkg/models"
)

const (
	defaultRange    = "5y"
	defaultInterval = "1d"
)

// --- Price / Index history fetcher ---

// historyFetcher serves both PriceHistorical and IndexHistorical; Yahoo
// treats an index like any other ticker.
type historyFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newHistoryFetcher(model provider.ModelType, baseURL, desc string) *historyFetcher {
	return &historyFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			model,
			desc,
			[]string{provider.ParamSymbol},
			[]string{provider.ParamRange, provider.ParamInterval},
			provider.WithCacheTTL(15*time.Minute),
			provider.WithRateLimit(5, time.Second),
		),
		baseURL: baseURL,
	}
}

func (f *historyFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	rng := params[provider.ParamRange]
	if rng == "" {
		rng = defaultRange
	}
	interval := params[provider.ParamInterval]
	if interval == "" {
		interval = defaultInterval
	}

	return f.Load(ctx, params, func(ctx context.Context) (any, error) {
		var resp yfChartResponse
		if err := fetchJSON(ctx, chartURL(f.baseURL, symbol, rng, interval), &resp); err != nil {
			return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
		}
		if resp.Chart.Error != nil {
			return nil, fmt.Errorf("yfinance chart %s: %s", symbol, resp.Chart.Error.Description)
		}
		if len(resp.Chart.Result) == 0 {
			return nil, fmt.Errorf("no data for %s", symbol)
		}

		bars := parseCandles(resp.Chart.Result[0])
		if len(bars) == 0 {
			return nil, fmt.Errorf("no data for %s", symbol)
		}
		return bars, nil
	})
}

// parseCandles converts a chart result into chronological daily bars.
// Timestamps are shifted by the exchange's GMT offset so each bar carries
// its local trading date. Rows without a close are skipped.
func parseCandles(result yfChartResult) []models.PriceBar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		local := time.Unix(ts+result.Meta.GMTOffset, 0).UTC()
		b := models.PriceBar{
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Close: *q.Close[i],
		}
		b.Open = valueOr(q.Open, i, b.Close)
		b.High = valueOr(q.High, i, b.Close)
		b.Low = valueOr(q.Low, i, b.Close)
		if i < len(q.Volume) && q.Volume[i] != nil {
			b.Volume = *q.Volume[i]
		}

		// Yahoo repeats the live bar when the session is still open.
		if n := len(bars); n > 0 && bars[n-1].Date.Equal(b.Date) {
			bars[n-1] = b
			continue
		}
		bars = append(bars, b)
	}
	return bars
}

func valueOr(xs []*float64, i int, fallback float64) float64 {
	if i < len(xs) && xs[i] != nil {
		return *xs[i]
	}
	return fallback
}
