package cboe

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/pkg/models"
)

// ---------------------------------------------------------------------------
// IndexHistorical: daily OHLCV for CBOE indices.
// URL: https://cdn.cboe.com/api/global/delayed_quotes/charts/historical/_{SYMBOL}.json
// ---------------------------------------------------------------------------

type indexHistoricalFetcher struct {
	provider.BaseFetcher
	baseURL string
	now     func() time.Time
}

func newIndexHistoricalFetcher(baseURL string) *indexHistoricalFetcher {
	return &indexHistoricalFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelIndexHistorical,
			"CBOE index daily OHLCV history",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamRange},
			provider.WithCacheTTL(15*time.Minute),
			provider.WithRateLimit(5, time.Second),
		),
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (f *indexHistoricalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	from, err := startDate(params, f.now())
	if err != nil {
		return nil, fmt.Errorf("cboe index historical: %w", err)
	}

	return f.Load(ctx, params, func(ctx context.Context) (any, error) {
		raw, err := fetchCBOERaw(ctx, chartURL(f.baseURL, symbolPath(symbol)))
		if err != nil {
			return nil, fmt.Errorf("cboe index historical %s: %w", symbol, err)
		}
		bars, err := parseDailyChart(raw, from)
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("cboe: no data for %s", symbol)
		}
		return bars, nil
	})
}

// parseDailyChart parses daily chart JSON into chronological bars dated on
// or after from. A zero from keeps everything.
func parseDailyChart(raw []byte, from time.Time) ([]models.PriceBar, error) {
	var resp cboeDailyChart
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}

	bars := make([]models.PriceBar, 0, len(resp.Data))
	for _, d := range resp.Data {
		date, err := parseCBOEDate(d.Date)
		if err != nil {
			return nil, fmt.Errorf("cboe: parse date %q: %w", d.Date, err)
		}
		if date.Before(from) {
			continue
		}
		bars = append(bars, models.PriceBar{
			Date:   date,
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.StockVolume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// startDate resolves the earliest bar date from start_date, or from a
// Yahoo-style range such as "5y", "6mo" or "30d". Neither means no bound.
func startDate(params provider.QueryParams, now time.Time) (time.Time, error) {
	if s := params[provider.ParamStartDate]; s != "" {
		return models.ParseDate(s)
	}
	rng := strings.ToLower(params[provider.ParamRange])
	if rng == "" || rng == "max" {
		return time.Time{}, nil
	}

	unit := strings.TrimLeft(rng, "0123456789")
	n, err := strconv.Atoi(strings.TrimSuffix(rng, unit))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid range %q", rng)
	}
	switch unit {
	case "y":
		return now.AddDate(-n, 0, 0), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	case "d":
		return now.AddDate(0, 0, -n), nil
	}
	return time.Time{}, fmt.Errorf("invalid range %q", rng)
}
