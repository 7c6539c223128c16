// Package tracker orchestrates one evaluation run: it fetches price history
// and macro series through narrow source interfaces, feeds them to the
// indicator engine and assembles the report.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/marketpulse/internal/analysis/liquidity"
	"github.com/seenimoa/marketpulse/internal/analysis/regime"
	"github.com/seenimoa/marketpulse/internal/analysis/technical"
	"github.com/seenimoa/marketpulse/pkg/models"
)

// PriceSource supplies chronological daily bars.
type PriceSource interface {
	PriceHistory(ctx context.Context, symbol string, years int) ([]models.PriceBar, error)
}

// MacroSource supplies macro series, most-recent-first.
type MacroSource interface {
	MacroSeries(ctx context.Context, seriesID string, limit int) (models.TimeSeries, error)
}

// SentimentSource supplies fear & greed readings.
type SentimentSource interface {
	Sentiment(ctx context.Context, market string) (models.Sentiment, error)
}

// Recorder receives evaluation outcomes, typically for metrics.
type Recorder interface {
	ObserveAsset(timeframe string, err error)
	ObserveRegime(label models.RegimeLabel)
	ObserveMacro(indicator string, err error)
}

// ErrNoSource is returned when an evaluation needs a source that was not
// configured.
var ErrNoSource = errors.New("source not configured")

// Asset is one configured instrument.
type Asset struct {
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

// LiquidityOptions names the three liquidity series and how many
// observations to fetch of each.
type LiquidityOptions struct {
	BalanceSheetID    string
	CashBufferID      string
	OvernightID       string
	BalanceSheetLimit int
	CashBufferLimit   int
	OvernightLimit    int
	Params            liquidity.Params
}

// VolatilityOptions selects the volatility index and its history.
type VolatilityOptions struct {
	Symbol       string
	HistoryYears int
	Params       regime.VolatilityParams
}

// Options configures a Tracker.
type Options struct {
	Technical  technical.Params
	Thresholds regime.Thresholds
	Liquidity  LiquidityOptions
	Volatility VolatilityOptions

	// HistoryYears of daily bars feed the weekly evaluation. When fewer
	// than FallbackMinBars come back, FallbackYears is tried instead.
	HistoryYears    int
	FallbackYears   int
	FallbackMinBars int
	// DailyYears is the trailing span used for the daily evaluation.
	DailyYears int

	Concurrency int
	SkipMacro   bool
	SkipDaily   bool
}

// DefaultOptions returns the standard run configuration.
func DefaultOptions() Options {
	return Options{
		Technical:  technical.DefaultParams(),
		Thresholds: regime.DefaultThresholds(),
		Liquidity: LiquidityOptions{
			BalanceSheetID:    "WALCL",
			CashBufferID:      "WTREGEN",
			OvernightID:       "RRPONTSYD",
			BalanceSheetLimit: 14,
			CashBufferLimit:   70,
			OvernightLimit:    70,
			Params:            liquidity.DefaultParams(),
		},
		Volatility: VolatilityOptions{
			Symbol:       "^VIX",
			HistoryYears: 2,
			Params:       regime.DefaultVolatilityParams(),
		},
		HistoryYears:    5,
		FallbackYears:   2,
		FallbackMinBars: 50,
		DailyYears:      1,
		Concurrency:     4,
	}
}

// Tracker runs evaluations against its sources.
type Tracker struct {
	prices    PriceSource
	macro     MacroSource
	sentiment SentimentSource
	opts      Options
	log       zerolog.Logger
	rec       Recorder
	now       func() time.Time
}

// New creates a Tracker. macro and sentiment may be nil, in which case
// their rows render as errors.
func New(prices PriceSource, macro MacroSource, sentiment SentimentSource, opts Options, log zerolog.Logger) *Tracker {
	return &Tracker{
		prices:    prices,
		macro:     macro,
		sentiment: sentiment,
		opts:      opts,
		log:       log.With().Str("component", "tracker").Logger(),
		now:       time.Now,
	}
}

// SetRecorder installs an outcome recorder.
func (t *Tracker) SetRecorder(r Recorder) { t.rec = r }

// Options returns the tracker's configuration.
func (t *Tracker) Options() Options { return t.opts }

// Run evaluates the macro block and every asset concurrently and returns
// the assembled report. Individual failures become "Error" entries; only
// context cancellation fails the run.
func (t *Tracker) Run(ctx context.Context, portfolio string, assets []Asset) (models.Report, error) {
	start := t.now()
	rep := models.Report{
		GeneratedAt: start,
		Portfolio:   portfolio,
		Assets:      make([]models.AssetReport, len(assets)),
	}

	var g errgroup.Group
	if t.opts.Concurrency > 0 {
		// One extra slot so the macro block never waits behind assets.
		g.SetLimit(t.opts.Concurrency + 1)
	}

	if !t.opts.SkipMacro {
		g.Go(func() error {
			m := t.Macro(ctx)
			rep.Macro = m.Rows
			rep.Liquidity = m.Liquidity
			rep.Volatility = m.Volatility
			rep.Sentiment = m.Sentiment
			return nil
		})
	}

	for i, a := range assets {
		g.Go(func() error {
			rep.Assets[i] = t.EvaluateAsset(ctx, a)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	t.log.Info().Str("portfolio", portfolio).Int("assets", len(assets)).
		Dur("elapsed", time.Since(start)).Msg("run complete")
	return rep, nil
}
