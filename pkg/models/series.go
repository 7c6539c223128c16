// Package models defines the plain result records and input series shared
// between the data providers, the indicator engine and the renderers.
package models

import (
	"sort"
	"time"
)

// DateLayout is the calendar-date layout used by every macro source.
const DateLayout = "2006-01-02"

// TimeSeriesPoint is a single dated observation.
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TimeSeries is an ordered sequence of observations with unique dates.
// Macro sources return it most-recent-first.
type TimeSeries []TimeSeriesPoint

// Len returns the number of observations.
func (s TimeSeries) Len() int { return len(s) }

// SortDesc orders the series most-recent-first in place.
func (s TimeSeries) SortDesc() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date.After(s[j].Date) })
}

// SortAsc orders the series chronologically in place.
func (s TimeSeries) SortAsc() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}

// Latest returns the most recent observation regardless of ordering.
func (s TimeSeries) Latest() (TimeSeriesPoint, bool) {
	if len(s) == 0 {
		return TimeSeriesPoint{}, false
	}
	latest := s[0]
	for _, p := range s[1:] {
		if p.Date.After(latest.Date) {
			latest = p
		}
	}
	return latest, true
}

// Values returns the raw values in the series' current order.
func (s TimeSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Dedup removes later duplicates of the same calendar date, keeping the
// first occurrence.
func (s TimeSeries) Dedup() TimeSeries {
	seen := make(map[string]bool, len(s))
	out := make(TimeSeries, 0, len(s))
	for _, p := range s {
		key := p.Date.Format(DateLayout)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// MustDate is ParseDate for literals known to be valid.
func MustDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}
