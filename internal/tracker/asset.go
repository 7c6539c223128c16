package tracker

import (
	"context"
	"fmt"

	"github.com/seenimoa/marketpulse/internal/analysis/regime"
	"github.com/seenimoa/marketpulse/internal/analysis/technical"
	"github.com/seenimoa/marketpulse/pkg/models"
)

// Timeframes reported to the Recorder.
const (
	TimeframeWeekly = "weekly"
	TimeframeDaily  = "daily"
)

// History fetches the daily bars behind an asset evaluation, retrying with
// the shorter fallback span when the long one comes back thin.
func (t *Tracker) History(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	if t.prices == nil {
		return nil, fmt.Errorf("price history %s: %w", symbol, ErrNoSource)
	}
	bars, err := t.prices.PriceHistory(ctx, symbol, t.opts.HistoryYears)
	if err == nil && len(bars) >= t.opts.FallbackMinBars {
		return bars, nil
	}
	if t.opts.FallbackYears <= 0 || t.opts.FallbackYears == t.opts.HistoryYears {
		return bars, err
	}

	t.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).AnErr("cause", err).
		Int("years", t.opts.FallbackYears).Msg("retrying with shorter history")
	short, ferr := t.prices.PriceHistory(ctx, symbol, t.opts.FallbackYears)
	if ferr != nil {
		if err != nil {
			return nil, err
		}
		// Keep the thin long history rather than nothing.
		return bars, nil
	}
	return short, nil
}

// EvaluateAsset builds both timeframes for one asset. Failures are
// captured in the report entry, never returned.
func (t *Tracker) EvaluateAsset(ctx context.Context, a Asset) models.AssetReport {
	out := models.AssetReport{Name: a.Name, Symbol: a.Symbol}
	log := t.log.With().Str("symbol", a.Symbol).Logger()

	bars, err := t.History(ctx, a.Symbol)
	if err != nil {
		log.Warn().Err(err).Msg("price history unavailable")
		out.WeeklyErr = err.Error()
		out.DailyErr = err.Error()
		t.observeAsset(TimeframeWeekly, err)
		if !t.opts.SkipDaily {
			t.observeAsset(TimeframeDaily, err)
		}
		return out
	}

	weekly, err := t.EvaluateWeekly(a, bars)
	t.observeAsset(TimeframeWeekly, err)
	if err != nil {
		log.Warn().Err(err).Msg("weekly evaluation failed")
		out.WeeklyErr = err.Error()
	} else {
		out.Weekly = &weekly
		if t.rec != nil {
			t.rec.ObserveRegime(weekly.Regime.Label)
		}
	}

	if t.opts.SkipDaily {
		return out
	}
	daily, err := t.EvaluateDaily(a, bars)
	t.observeAsset(TimeframeDaily, err)
	if err != nil {
		log.Warn().Err(err).Msg("daily evaluation failed")
		out.DailyErr = err.Error()
	} else {
		out.Daily = &daily
	}
	return out
}

// EvaluateWeekly computes the weekly snapshot and classifies its regime.
func (t *Tracker) EvaluateWeekly(a Asset, bars []models.PriceBar) (models.IndicatorResult, error) {
	res, err := technical.EvaluateWeekly(a.Symbol, bars, t.opts.Technical)
	if err != nil {
		return models.IndicatorResult{}, err
	}
	res.Name = a.Name
	return regime.Apply(res, t.opts.Thresholds), nil
}

// EvaluateDaily computes the daily snapshot over the trailing DailyYears
// of bars.
func (t *Tracker) EvaluateDaily(a Asset, bars []models.PriceBar) (models.DailyResult, error) {
	if len(bars) == 0 {
		return models.DailyResult{}, fmt.Errorf("%s: no daily bars: %w", a.Symbol, technical.ErrInsufficientData)
	}
	if t.opts.DailyYears > 0 {
		from := bars[len(bars)-1].Date.AddDate(-t.opts.DailyYears, 0, 0)
		bars = models.Since(bars, from)
	}
	return technical.EvaluateDaily(a.Symbol, bars, t.opts.Technical)
}

func (t *Tracker) observeAsset(timeframe string, err error) {
	if t.rec != nil {
		t.rec.ObserveAsset(timeframe, err)
	}
}
