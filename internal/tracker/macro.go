package tracker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/marketpulse/internal/analysis/liquidity"
	"github.com/seenimoa/marketpulse/internal/analysis/regime"
	"github.com/seenimoa/marketpulse/pkg/models"
)

// Macro row indicator names.
const (
	IndicatorLiquidity = "Global Liquidity"
	IndicatorVIX       = "VIX"
	IndicatorVIXZ      = "-Z(VIX)"
	IndicatorFGStocks  = "F&G Stocks"
	IndicatorFGCrypto  = "F&G Crypto"
)

// MacroBlock is the macro section of a report.
type MacroBlock struct {
	Rows       []models.MacroRow
	Liquidity  *models.LiquidityRecord
	Volatility *models.VolatilityRecord
	Sentiment  []models.Sentiment
}

// Liquidity fetches the three liquidity series concurrently and builds the
// gauge.
func (t *Tracker) Liquidity(ctx context.Context) (models.LiquidityRecord, error) {
	if t.macro == nil {
		return models.LiquidityRecord{}, fmt.Errorf("liquidity: %w", ErrNoSource)
	}
	lo := t.opts.Liquidity

	var in liquidity.Inputs
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(dst *models.TimeSeries, id string, limit int) {
		g.Go(func() error {
			s, err := t.macro.MacroSeries(gctx, id, limit)
			if err != nil {
				return err
			}
			*dst = s
			return nil
		})
	}
	fetch(&in.BalanceSheet, lo.BalanceSheetID, lo.BalanceSheetLimit)
	fetch(&in.CashBuffer, lo.CashBufferID, lo.CashBufferLimit)
	fetch(&in.Overnight, lo.OvernightID, lo.OvernightLimit)
	if err := g.Wait(); err != nil {
		return models.LiquidityRecord{}, fmt.Errorf("liquidity: %w", err)
	}

	return liquidity.Build(in, lo.Params)
}

// Volatility fetches the volatility index and builds its record.
func (t *Tracker) Volatility(ctx context.Context) (models.VolatilityRecord, error) {
	if t.prices == nil {
		return models.VolatilityRecord{}, fmt.Errorf("volatility: %w", ErrNoSource)
	}
	vo := t.opts.Volatility
	bars, err := t.prices.PriceHistory(ctx, vo.Symbol, vo.HistoryYears)
	if err != nil {
		return models.VolatilityRecord{}, fmt.Errorf("volatility: %w", err)
	}
	return regime.BuildVolatility(vo.Symbol, bars, vo.Params)
}

// Sentiment fetches one fear & greed reading.
func (t *Tracker) Sentiment(ctx context.Context, market string) (models.Sentiment, error) {
	if t.sentiment == nil {
		return models.Sentiment{}, fmt.Errorf("sentiment %s: %w", market, ErrNoSource)
	}
	return t.sentiment.Sentiment(ctx, market)
}

// Macro evaluates every macro indicator concurrently. Each one fails
// independently into an "Error" row; rows keep a fixed order.
func (t *Tracker) Macro(ctx context.Context) MacroBlock {
	var (
		wg     sync.WaitGroup
		liq    models.LiquidityRecord
		liqErr error
		vol    models.VolatilityRecord
		volErr error
		fg     [2]models.Sentiment
		fgErr  [2]error
	)
	markets := [2]string{models.MarketStocks, models.MarketCrypto}

	wg.Add(4)
	go func() {
		defer wg.Done()
		liq, liqErr = t.Liquidity(ctx)
	}()
	go func() {
		defer wg.Done()
		vol, volErr = t.Volatility(ctx)
	}()
	for i, m := range markets {
		go func() {
			defer wg.Done()
			fg[i], fgErr[i] = t.Sentiment(ctx, m)
		}()
	}
	wg.Wait()

	var block MacroBlock

	t.observeMacro(IndicatorLiquidity, liqErr)
	if liqErr != nil {
		t.log.Warn().Err(liqErr).Msg("liquidity unavailable")
		block.Rows = append(block.Rows, models.ErrorRow(IndicatorLiquidity))
	} else {
		block.Liquidity = &liq
		block.Rows = append(block.Rows, LiquidityRow(liq))
	}

	t.observeMacro(IndicatorVIX, volErr)
	if volErr != nil {
		t.log.Warn().Err(volErr).Msg("volatility unavailable")
		block.Rows = append(block.Rows, models.ErrorRow(IndicatorVIX), models.ErrorRow(IndicatorVIXZ))
	} else {
		block.Volatility = &vol
		block.Rows = append(block.Rows, VolatilityRows(vol)...)
	}

	for i, name := range [2]string{IndicatorFGStocks, IndicatorFGCrypto} {
		t.observeMacro(name, fgErr[i])
		if fgErr[i] != nil {
			t.log.Warn().Err(fgErr[i]).Str("market", markets[i]).Msg("sentiment unavailable")
			block.Rows = append(block.Rows, models.ErrorRow(name))
			continue
		}
		block.Sentiment = append(block.Sentiment, fg[i])
		block.Rows = append(block.Rows, SentimentRow(name, fg[i]))
	}

	return block
}

// LiquidityRow renders the gauge as a macro row with the 4w and 12w
// percentage changes in the detail.
func LiquidityRow(r models.LiquidityRecord) models.MacroRow {
	return models.MacroRow{
		Indicator: IndicatorLiquidity,
		Value:     models.Float(round2(r.Value)),
		Unit:      "Billions USD",
		Signal:    string(r.Trend),
		Detail:    fmt.Sprintf("4w: %s | 12w: %s", signedPct(r.MoM.Pct), signedPct(r.QoQ.Pct)),
	}
}

// VolatilityRows renders the level row and the z-score row.
func VolatilityRows(v models.VolatilityRecord) []models.MacroRow {
	return []models.MacroRow{
		{
			Indicator: IndicatorVIX,
			Value:     models.Float(round2(v.Level)),
			Unit:      "Index",
			Signal:    v.LevelDesc,
		},
		{
			Indicator: IndicatorVIXZ,
			Value:     models.Float(round2(v.ZScore)),
			Unit:      "Z-Score",
			Signal:    string(v.Regime),
		},
	}
}

// SentimentRow renders one fear & greed reading.
func SentimentRow(name string, s models.Sentiment) models.MacroRow {
	return models.MacroRow{
		Indicator: name,
		Value:     models.Float(float64(s.Value)),
		Unit:      "0-100 Scale",
		Signal:    s.Label,
	}
}

// signedPct formats an optional percentage as "+1.23%", "-0.5%" or "N/A".
func signedPct(p *float64) string {
	if p == nil {
		return "N/A"
	}
	v := round2(*p)
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	if v >= 0 {
		return fmt.Sprintf("+%g%%", v)
	}
	return fmt.Sprintf("%g%%", v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (t *Tracker) observeMacro(indicator string, err error) {
	if t.rec != nil {
		t.rec.ObserveMacro(indicator, err)
	}
}
