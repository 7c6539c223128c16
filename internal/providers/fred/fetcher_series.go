package fred

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/pkg/models"
)

// defaultLimit is the observation count requested when none is given.
const defaultLimit = "1"

// ---- EconomicSeries fetcher ----

type seriesFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newSeriesFetcher(baseURL string) *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelEconomicSeries,
			"FRED series observations, most recent first",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit, provider.ParamStartDate},
			provider.WithCacheTTL(10*time.Minute),
			provider.WithRateLimit(2, time.Second),
		),
		baseURL: baseURL,
	}
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	seriesID := params[provider.ParamSymbol]
	apiKey := params[paramAPIKey]

	limit := params[provider.ParamLimit]
	if limit == "" {
		limit = defaultLimit
	}
	if _, err := strconv.Atoi(limit); err != nil {
		return nil, fmt.Errorf("fred series %s: invalid limit %q", seriesID, limit)
	}

	endpoint := fmt.Sprintf("series/observations?series_id=%s&sort_order=desc&limit=%s",
		url.QueryEscape(seriesID), limit)
	if sd := params[provider.ParamStartDate]; sd != "" {
		endpoint += "&observation_start=" + url.QueryEscape(sd)
	}

	return f.Load(ctx, params, func(ctx context.Context) (any, error) {
		var resp fredObservationsResponse
		if err := fetchFredJSON(ctx, f.baseURL, endpoint, apiKey, &resp); err != nil {
			return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
		}
		series, err := toSeries(resp.Observations)
		if err != nil {
			return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
		}
		return series, nil
	})
}

// toSeries converts raw observations into a most-recent-first series,
// skipping missing values.
func toSeries(obs []fredObservation) (models.TimeSeries, error) {
	series := make(models.TimeSeries, 0, len(obs))
	for _, o := range obs {
		if o.Value == missingValue || o.Value == "" {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse value %q on %s: %w", o.Value, o.Date, err)
		}
		d, err := models.ParseDate(o.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", o.Date, err)
		}
		series = append(series, models.TimeSeriesPoint{Date: d, Value: v})
	}
	series.SortDesc()
	return series.Dedup(), nil
}
