package cboe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/pkg/models"
)

const vixChart = `{
  "symbol": "_VIX",
  "data": [
    {"date": "2024-01-03", "open": 14.0, "high": 14.5, "low": 13.8, "close": 14.04, "stock_volume": 0},
    {"date": "2021-06-01", "open": 17.0, "high": 18.0, "low": 16.5, "close": 17.9, "stock_volume": 0},
    {"date": "2024-01-02", "open": 13.2, "high": 14.2, "low": 13.0, "close": 13.2, "stock_volume": 0}
  ]
}`

func TestProviderInfo(t *testing.T) {
	info := New().Info()
	assert.Equal(t, "cboe", info.Name)
	assert.Equal(t, []provider.ModelType{provider.ModelIndexHistorical}, info.Models)
}

func TestSymbolPath(t *testing.T) {
	assert.Equal(t, "_VIX", symbolPath("^VIX"))
	assert.Equal(t, "_VIX", symbolPath("vix"))
	assert.Equal(t, "_SPX", symbolPath("^SPX"))
}

func TestStartDate(t *testing.T) {
	now := models.MustDate("2024-06-15")
	tests := []struct {
		params provider.QueryParams
		want   time.Time
		err    bool
	}{
		{provider.QueryParams{}, time.Time{}, false},
		{provider.QueryParams{provider.ParamRange: "max"}, time.Time{}, false},
		{provider.QueryParams{provider.ParamRange: "2y"}, models.MustDate("2022-06-15"), false},
		{provider.QueryParams{provider.ParamRange: "6mo"}, models.MustDate("2023-12-15"), false},
		{provider.QueryParams{provider.ParamRange: "30d"}, models.MustDate("2024-05-16"), false},
		{provider.QueryParams{provider.ParamStartDate: "2020-01-01", provider.ParamRange: "1y"}, models.MustDate("2020-01-01"), false},
		{provider.QueryParams{provider.ParamRange: "y"}, time.Time{}, true},
		{provider.QueryParams{provider.ParamRange: "5w"}, time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := startDate(tt.params, now)
		if tt.err {
			assert.Error(t, err, "%v", tt.params)
			continue
		}
		require.NoError(t, err, "%v", tt.params)
		assert.Equal(t, tt.want, got, "%v", tt.params)
	}
}

func TestParseDailyChart(t *testing.T) {
	bars, err := parseDailyChart([]byte(vixChart), time.Time{})
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, models.MustDate("2021-06-01"), bars[0].Date, "sorted chronologically")
	assert.Equal(t, 14.04, bars[2].Close)

	bars, err = parseDailyChart([]byte(vixChart), models.MustDate("2023-01-01"))
	require.NoError(t, err)
	assert.Len(t, bars, 2)

	_, err = parseDailyChart([]byte(`{"data":[{"date":"01/02/2024"}]}`), time.Time{})
	assert.Error(t, err)
	_, err = parseDailyChart([]byte(`not json`), time.Time{})
	assert.Error(t, err)
}

func TestIndexHistoricalWithMockServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/charts/historical/_VIX.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(vixChart))
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	f := p.BaseProvider.Fetcher(provider.ModelIndexHistorical).(*indexHistoricalFetcher)
	f.now = func() time.Time { return models.MustDate("2024-01-10") }

	res, err := p.Fetcher(provider.ModelIndexHistorical).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "^VIX", provider.ParamRange: "2y"})
	require.NoError(t, err)
	bars := res.Data.([]models.PriceBar)
	require.Len(t, bars, 2)
	assert.Equal(t, models.MustDate("2024-01-02"), bars[0].Date)

	_, err = p.Fetcher(provider.ModelIndexHistorical).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "^NOPE"})
	var se interface{ Retryable() bool }
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Retryable())
}
