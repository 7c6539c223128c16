package yfinance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/pkg/models"
)

// chartJSON is a trimmed v8 chart payload: three sessions, the middle one
// without a close, and a New York GMT offset.
const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "^VIX", "currency": "USD", "exchangeTimezoneName": "America/New_York", "gmtoffset": -14400},
      "timestamp": [1704205800, 1704292200, 1704378600],
      "indicators": {
        "quote": [{
          "open":   [13.2, 14.0, 14.1],
          "high":   [14.2, 14.5, 14.6],
          "low":    [13.0, 13.8, 13.7],
          "close":  [13.2, null, 14.13],
          "volume": [0, 0, null]
        }],
        "adjclose": [{"adjclose": [13.2, null, 14.13]}]
      }
    }],
    "error": null
  }
}`

func TestProviderInfo(t *testing.T) {
	p := New()
	info := p.Info()
	assert.Equal(t, "yfinance", info.Name)
	assert.Empty(t, info.Credentials)
	assert.ElementsMatch(t,
		[]provider.ModelType{provider.ModelPriceHistorical, provider.ModelIndexHistorical},
		info.Models)
	assert.NoError(t, p.Init(nil))
}

func TestChartURL(t *testing.T) {
	assert.Equal(t,
		"https://h/v8/finance/chart/%5EVIX?range=5y&interval=1d&includeAdjustedClose=true",
		chartURL("https://h", "^VIX", "5y", "1d"))
	assert.Equal(t,
		"https://h/v8/finance/chart/BTC-USD?range=2y&interval=1d&includeAdjustedClose=true",
		chartURL("https://h", "BTC-USD", "2y", "1d"))
}

func TestParseCandles(t *testing.T) {
	one := func(v float64) *float64 { return &v }
	res := yfChartResult{
		Meta:      yfChartMeta{GMTOffset: -18000},
		Timestamp: []int64{1704205800, 1704292200, 1704292300},
		Indicators: yfIndicators{Quote: []yfOHLCV{{
			Open:  []*float64{nil, one(2), one(3)},
			High:  []*float64{one(1.5), one(2.5), one(3.5)},
			Low:   []*float64{one(0.5), one(1.5), one(2.5)},
			Close: []*float64{one(1), one(2), one(3)},
		}}},
	}

	bars := parseCandles(res)
	require.Len(t, bars, 2, "same-day duplicate collapses into the later row")
	assert.Equal(t, models.MustDate("2024-01-02"), bars[0].Date)
	assert.Equal(t, 1.0, bars[0].Open, "missing open falls back to close")
	assert.Equal(t, models.MustDate("2024-01-03"), bars[1].Date)
	assert.Equal(t, 3.0, bars[1].Close)

	assert.Nil(t, parseCandles(yfChartResult{}))
}

func TestHistoryFetchWithMockServer(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/v8/finance/chart/^VIX", r.URL.Path)
		assert.Equal(t, "5y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(New(WithBaseURL(srv.URL))))

	params := provider.QueryParams{provider.ParamSymbol: "^VIX"}
	res, err := reg.Fetch(context.Background(), provider.ModelIndexHistorical, params)
	require.NoError(t, err)

	bars, ok := res.Data.([]models.PriceBar)
	require.True(t, ok, "got %T", res.Data)
	require.Len(t, bars, 2)
	assert.Equal(t, models.MustDate("2024-01-02"), bars[0].Date)
	assert.Equal(t, models.MustDate("2024-01-04"), bars[1].Date)
	assert.InDelta(t, 14.13, bars[1].Close, 1e-9)
	assert.Equal(t, int64(0), bars[1].Volume)

	res, err = reg.Fetch(context.Background(), provider.ModelIndexHistorical, params)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, hits)
}

func TestHistoryFetchChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := New(WithBaseURL(srv.URL)).Fetcher(provider.ModelPriceHistorical)
	_, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "NOPE"})
	assert.ErrorContains(t, err, "delisted")
}

func TestHistoryFetchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	f := New(WithBaseURL(srv.URL)).Fetcher(provider.ModelPriceHistorical)
	_, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "SPY"})
	assert.ErrorContains(t, err, "no data for SPY")
}
