// Package liquidity builds the liquidity gauge from independently sampled
// balance sheet, cash buffer and overnight facility series.
package liquidity

import (
	"sort"
	"time"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// Aligner answers backward as-of lookups against one series.
type Aligner struct {
	asc models.TimeSeries
}

// NewAligner indexes a copy of s in chronological order. Duplicate dates
// keep their first occurrence in the input order.
func NewAligner(s models.TimeSeries) *Aligner {
	asc := append(models.TimeSeries(nil), s...).Dedup()
	asc.SortAsc()
	return &Aligner{asc: asc}
}

// Len returns the number of indexed observations.
func (a *Aligner) Len() int { return len(a.asc) }

// AsOf returns the most recent observation dated on or before date.
// A zero value is a valid match.
func (a *Aligner) AsOf(date time.Time) (models.TimeSeriesPoint, bool) {
	i := sort.Search(len(a.asc), func(i int) bool { return a.asc[i].Date.After(date) })
	if i == 0 {
		return models.TimeSeriesPoint{}, false
	}
	return a.asc[i-1], true
}

// AlignedPoint is one base observation with the as-of values of the other
// series, in the order they were passed to Align.
type AlignedPoint struct {
	Date   time.Time
	Base   float64
	Values []float64
}

// Align walks the limit most recent base observations, most-recent-first,
// and joins every other series backward as of each base date. Dates where
// any join fails are dropped. There is no interpolation or forward fill
// beyond the as-of rule. A non-positive limit means no bound.
func Align(base models.TimeSeries, limit int, others ...models.TimeSeries) []AlignedPoint {
	desc := append(models.TimeSeries(nil), base...).Dedup()
	desc.SortDesc()
	if limit > 0 && len(desc) > limit {
		desc = desc[:limit]
	}

	aligners := make([]*Aligner, len(others))
	for i, s := range others {
		aligners[i] = NewAligner(s)
	}

	out := make([]AlignedPoint, 0, len(desc))
	for _, p := range desc {
		values := make([]float64, len(aligners))
		matched := true
		for i, a := range aligners {
			m, ok := a.AsOf(p.Date)
			if !ok {
				matched = false
				break
			}
			values[i] = m.Value
		}
		if !matched {
			continue
		}
		out = append(out, AlignedPoint{Date: p.Date, Base: p.Value, Values: values})
	}
	return out
}
