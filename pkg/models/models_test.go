package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegimeBias(t *testing.T) {
	for _, r := range AllRegimes() {
		assert.True(t, r.Valid(), r)
		assert.NotEmpty(t, r.Bias(), r)
	}
	assert.Equal(t, "Ride trend, buy dips", NewRegime(RegimeTrendingUp).Bias)
	assert.False(t, RegimeLabel("SIDEWAYS").Valid())
	assert.Equal(t, "Insufficient data", RegimeLabel("SIDEWAYS").Bias())
}

func TestTimeSeriesOrdering(t *testing.T) {
	s := TimeSeries{
		{Date: MustDate("2024-01-03"), Value: 3},
		{Date: MustDate("2024-01-01"), Value: 1},
		{Date: MustDate("2024-01-02"), Value: 2},
	}

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 3.0, latest.Value)

	s.SortAsc()
	assert.Equal(t, []float64{1, 2, 3}, s.Values())
	s.SortDesc()
	assert.Equal(t, []float64{3, 2, 1}, s.Values())

	_, ok = TimeSeries{}.Latest()
	assert.False(t, ok)
}

func TestTimeSeriesDedup(t *testing.T) {
	s := TimeSeries{
		{Date: MustDate("2024-01-02"), Value: 2},
		{Date: MustDate("2024-01-02").Add(6 * time.Hour), Value: 9},
		{Date: MustDate("2024-01-01"), Value: 1},
	}
	out := s.Dedup()
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, []float64{2, 1}, out.Values())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
	assert.Panics(t, func() { MustDate("nope") })
}

func TestBars(t *testing.T) {
	bars := []PriceBar{
		{Date: MustDate("2024-01-01"), Close: 10},
		{Date: MustDate("2024-01-08"), Close: 11},
		{Date: MustDate("2024-01-15"), Close: 12},
	}
	assert.Equal(t, []float64{10, 11, 12}, Closes(bars))
	assert.Len(t, Since(bars, MustDate("2024-01-05")), 2)
	assert.Len(t, Since(bars, MustDate("2024-01-01")), 3)
	assert.Nil(t, Since(bars, MustDate("2025-01-01")))
}

func TestErrorRow(t *testing.T) {
	r := ErrorRow("VIX")
	assert.Nil(t, r.Value)
	assert.Equal(t, SignalError, r.Signal)
	assert.Equal(t, SignalError, r.Detail)

	assert.False(t, PeriodChange{Offset: 4}.Available())
	assert.True(t, PeriodChange{Offset: 4, Delta: Float(1)}.Available())
	assert.Equal(t, 3, *Int(3))
}
