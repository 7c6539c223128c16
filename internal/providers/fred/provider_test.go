package fred

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/pkg/models"
)

func TestProviderInfo(t *testing.T) {
	info := New().Info()
	assert.Equal(t, "fred", info.Name)
	assert.NotEmpty(t, info.Website)
	require.Len(t, info.Credentials, 1)
	assert.Equal(t, "api_key", info.Credentials[0].Name)
	assert.True(t, info.Credentials[0].Required)
	assert.Equal(t, []provider.ModelType{provider.ModelEconomicSeries}, info.Models)
}

func TestProviderInitMissingKey(t *testing.T) {
	var ic *provider.ErrInvalidCredentials
	assert.ErrorAs(t, New().Init(map[string]string{}), &ic)
}

func TestAPIKeyInjection(t *testing.T) {
	p := New()
	require.NoError(t, p.Init(map[string]string{"api_key": "my_fred_key"}))

	f := p.Fetcher(provider.ModelEconomicSeries)
	wrapper, ok := f.(*apiKeyInjector)
	require.True(t, ok, "got %T", f)
	assert.Equal(t, "my_fred_key", *wrapper.apiKey)
	assert.Equal(t, []string{provider.ParamSymbol}, f.RequiredParams())

	assert.Nil(t, p.Fetcher(provider.ModelPriceHistorical))
}

func TestFredURL(t *testing.T) {
	assert.Equal(t,
		"https://x/fred/series/observations?series_id=WALCL&api_key=k&file_type=json",
		fredURL("https://x/fred", "series/observations?series_id=WALCL", "k"))
	assert.Equal(t,
		"https://x/fred/series?api_key=a%26b&file_type=json",
		fredURL("https://x/fred", "series", "a&b"))
}

func TestToSeries(t *testing.T) {
	series, err := toSeries([]fredObservation{
		{Date: "2024-01-03", Value: "."},
		{Date: "2024-01-01", Value: "5.33"},
		{Date: "2024-01-02", Value: "5.34"},
		{Date: "2024-01-02", Value: "9.99"},
	})
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, models.MustDate("2024-01-02"), series[0].Date)
	assert.InDelta(t, 5.34, series[0].Value, 1e-9)
	assert.InDelta(t, 5.33, series[1].Value, 1e-9)

	_, err = toSeries([]fredObservation{{Date: "2024-01-01", Value: "abc"}})
	assert.Error(t, err)
}

func newTestServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/fred/series/observations" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		q := r.URL.Query()
		if q.Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error_code":    400,
				"error_message": "Bad Request. The value for variable api_key is not registered.",
			})
			return
		}
		assert.Equal(t, "desc", q.Get("sort_order"))
		assert.Equal(t, "json", q.Get("file_type"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sort_order": "desc",
			"limit":      q.Get("limit"),
			"observations": []map[string]string{
				{"date": "2024-01-03", "value": "."},
				{"date": "2024-01-02", "value": "7700000"},
				{"date": "2024-01-01", "value": "7690000"},
			},
		})
	}))
}

func TestSeriesFetchWithMockServer(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	defer srv.Close()

	p := New(WithBaseURL(srv.URL + "/fred/"))
	require.NoError(t, p.Init(map[string]string{"api_key": "test-key"}))

	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(p))

	params := provider.QueryParams{provider.ParamSymbol: "WALCL", provider.ParamLimit: "14"}
	res, err := reg.Fetch(context.Background(), provider.ModelEconomicSeries, params)
	require.NoError(t, err)
	assert.Equal(t, "fred", res.Provider)

	series, ok := res.Data.(models.TimeSeries)
	require.True(t, ok, "got %T", res.Data)
	require.Len(t, series, 2)
	assert.Equal(t, models.MustDate("2024-01-02"), series[0].Date)
	assert.InDelta(t, 7700000, series[0].Value, 1e-9)

	// Second fetch with the same params comes from the cache.
	res, err = reg.Fetch(context.Background(), provider.ModelEconomicSeries, params)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, hits)
}

func TestSeriesFetchBadKey(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	defer srv.Close()

	p := New(WithBaseURL(srv.URL + "/fred"))
	require.NoError(t, p.Init(map[string]string{"api_key": "wrong"}))

	_, err := p.Fetcher(provider.ModelEconomicSeries).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "WALCL"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "api_key=wrong")
	assert.Equal(t, 1, hits, "4xx must not be retried")
}

func TestSeriesFetchInvalidLimit(t *testing.T) {
	p := New(WithBaseURL("http://127.0.0.1:0/fred"))
	require.NoError(t, p.Init(map[string]string{"api_key": "k"}))

	_, err := p.Fetcher(provider.ModelEconomicSeries).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "WALCL", provider.ParamLimit: "ten"})
	assert.ErrorContains(t, err, "invalid limit")
}
