// Package config handles configuration loading for marketpulse.
// It supports YAML config files with .env and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/marketpulse/internal/analysis/liquidity"
	"github.com/seenimoa/marketpulse/internal/analysis/regime"
	"github.com/seenimoa/marketpulse/internal/analysis/technical"
	"github.com/seenimoa/marketpulse/internal/infra"
	"github.com/seenimoa/marketpulse/internal/providers"
	"github.com/seenimoa/marketpulse/internal/tracker"
)

// ErrMissingFREDKey is returned when macro output is requested without a
// FRED API key.
var ErrMissingFREDKey = errors.New("FRED API key not set (FRED_API_KEY)")

// Config represents the complete application configuration.
type Config struct {
	Sources    SourcesConfig    `mapstructure:"sources"    yaml:"sources"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"   yaml:"analysis"`
	Regime     RegimeConfig     `mapstructure:"regime"     yaml:"regime"`
	Liquidity  LiquidityConfig  `mapstructure:"liquidity"  yaml:"liquidity"`
	Volatility VolatilityConfig `mapstructure:"volatility" yaml:"volatility"`
	Output     OutputConfig     `mapstructure:"output"     yaml:"output"`
	Metrics    MetricsConfig    `mapstructure:"metrics"    yaml:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// SourcesConfig holds data source credentials and HTTP client settings.
type SourcesConfig struct {
	FRED           FREDConfig    `mapstructure:"fred"             yaml:"fred"`
	Timeout        time.Duration `mapstructure:"timeout"          yaml:"timeout"          validate:"gt=0"`
	MaxRetries     uint64        `mapstructure:"max_retries"      yaml:"max_retries"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec" yaml:"requests_per_sec" validate:"gt=0"`
	Burst          int           `mapstructure:"burst"            yaml:"burst"            validate:"gte=1"`
	Breaker        BreakerConfig `mapstructure:"breaker"          yaml:"breaker"`
}

// FREDConfig holds the FRED API key.
type FREDConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
}

// BreakerConfig configures the per-host circuit breaker.
type BreakerConfig struct {
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures" yaml:"consecutive_failures" validate:"gte=1"`
	Timeout             time.Duration `mapstructure:"timeout"              yaml:"timeout"              validate:"gt=0"`
}

// AnalysisConfig holds the indicator windows and run sizing.
type AnalysisConfig struct {
	MAPeriods         []int `mapstructure:"ma_periods"          yaml:"ma_periods"          validate:"min=1,dive,gt=0"`
	ZScoreWindow      int   `mapstructure:"zscore_window"       yaml:"zscore_window"       validate:"gt=1"`
	DailyZScoreWindow int   `mapstructure:"daily_zscore_window" yaml:"daily_zscore_window" validate:"gt=1"`
	ADXPeriod         int   `mapstructure:"adx_period"          yaml:"adx_period"          validate:"gt=0"`
	MomentumLookbacks []int `mapstructure:"momentum_lookbacks"  yaml:"momentum_lookbacks"  validate:"min=1,dive,gt=0"`
	TEMASpans         []int `mapstructure:"tema_spans"          yaml:"tema_spans"          validate:"len=3,dive,gt=0"`
	MinWeeks          int   `mapstructure:"min_weeks"           yaml:"min_weeks"           validate:"gt=0"`
	DailyMinBars      int   `mapstructure:"daily_min_bars"      yaml:"daily_min_bars"      validate:"gt=0"`
	HistoryYears      int   `mapstructure:"history_years"       yaml:"history_years"       validate:"gt=0"`
	FallbackYears     int   `mapstructure:"fallback_years"      yaml:"fallback_years"      validate:"gt=0"`
	FallbackMinBars   int   `mapstructure:"fallback_min_bars"   yaml:"fallback_min_bars"   validate:"gte=0"`
	DailyYears        int   `mapstructure:"daily_years"         yaml:"daily_years"         validate:"gt=0"`
	ConcurrentFetches int   `mapstructure:"concurrent_fetches"  yaml:"concurrent_fetches"  validate:"gte=1"`
}

// RegimeConfig holds the per-asset regime rule cut-offs.
type RegimeConfig struct {
	ADXTrend       float64 `mapstructure:"adx_trend"       yaml:"adx_trend"       validate:"gtefield=ADXChoppy"`
	ADXChoppy      float64 `mapstructure:"adx_choppy"      yaml:"adx_choppy"      validate:"gt=0"`
	StrongMomentum float64 `mapstructure:"strong_momentum" yaml:"strong_momentum" validate:"gt=0"`
	MARatio        float64 `mapstructure:"ma_ratio"        yaml:"ma_ratio"        validate:"gte=0,lte=1"`
	ZExtreme       float64 `mapstructure:"z_extreme"       yaml:"z_extreme"       validate:"gt=0"`
}

// LiquidityConfig names the liquidity series and tunes the gauge.
type LiquidityConfig struct {
	BalanceSheetID    string  `mapstructure:"balance_sheet_id"    yaml:"balance_sheet_id"    validate:"required"`
	CashBufferID      string  `mapstructure:"cash_buffer_id"      yaml:"cash_buffer_id"      validate:"required"`
	OvernightID       string  `mapstructure:"overnight_id"        yaml:"overnight_id"        validate:"required"`
	BalanceSheetLimit int     `mapstructure:"balance_sheet_limit" yaml:"balance_sheet_limit" validate:"gt=0"`
	CashBufferLimit   int     `mapstructure:"cash_buffer_limit"   yaml:"cash_buffer_limit"   validate:"gt=0"`
	OvernightLimit    int     `mapstructure:"overnight_limit"     yaml:"overnight_limit"     validate:"gt=0"`
	Lookback          int     `mapstructure:"lookback"            yaml:"lookback"            validate:"gt=0"`
	Scale             float64 `mapstructure:"scale"               yaml:"scale"               validate:"gt=0"`
	TrendThreshold    float64 `mapstructure:"trend_threshold"     yaml:"trend_threshold"     validate:"gte=0"`
}

// VolatilityConfig selects the volatility index and its z-score settings.
type VolatilityConfig struct {
	Symbol        string  `mapstructure:"symbol"         yaml:"symbol"         validate:"required"`
	ZScoreWindow  int     `mapstructure:"zscore_window"  yaml:"zscore_window"  validate:"gt=1"`
	SmoothingSpan int     `mapstructure:"smoothing_span" yaml:"smoothing_span" validate:"gt=0"`
	HistoryYears  int     `mapstructure:"history_years"  yaml:"history_years"  validate:"gt=0"`
	Extreme       float64 `mapstructure:"extreme"        yaml:"extreme"        validate:"gtefield=Mild"`
	Mild          float64 `mapstructure:"mild"           yaml:"mild"           validate:"gt=0"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=table json csv html"`
	Dir    string `mapstructure:"dir"    yaml:"dir"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"` // "text" or "json"
}

var validate = validator.New()

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.marketpulse/config.yaml (home directory)
//  3. /etc/marketpulse/config.yaml (system)
//
// A .env file in the working directory is loaded first. Environment
// variables override config file values.
// Format: MARKETPULSE_<SECTION>_<KEY>, e.g., MARKETPULSE_OUTPUT_FORMAT
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".marketpulse"))
	v.AddConfigPath("/etc/marketpulse")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MARKETPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override sensitive values from environment
	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads .env into the process environment. Variables already
// set take precedence; a missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	client := infra.DefaultClientOptions()
	v.SetDefault("sources.fred.api_key", "")
	v.SetDefault("sources.timeout", client.Timeout)
	v.SetDefault("sources.max_retries", client.MaxRetries)
	v.SetDefault("sources.requests_per_sec", client.RequestsPerSec)
	v.SetDefault("sources.burst", client.Burst)
	v.SetDefault("sources.breaker.consecutive_failures", client.Breaker.ConsecutiveFailures)
	v.SetDefault("sources.breaker.timeout", client.Breaker.Timeout)

	run := tracker.DefaultOptions()
	tp := run.Technical
	v.SetDefault("analysis.ma_periods", tp.MAPeriods)
	v.SetDefault("analysis.zscore_window", tp.ZScoreWindow)
	v.SetDefault("analysis.daily_zscore_window", tp.DailyZScoreWindow)
	v.SetDefault("analysis.adx_period", tp.ADXPeriod)
	v.SetDefault("analysis.momentum_lookbacks", tp.MomentumLookbacks)
	v.SetDefault("analysis.tema_spans", tp.TEMASpans[:])
	v.SetDefault("analysis.min_weeks", tp.MinWeeks)
	v.SetDefault("analysis.daily_min_bars", tp.DailyMinBars)
	v.SetDefault("analysis.history_years", run.HistoryYears)
	v.SetDefault("analysis.fallback_years", run.FallbackYears)
	v.SetDefault("analysis.fallback_min_bars", run.FallbackMinBars)
	v.SetDefault("analysis.daily_years", run.DailyYears)
	v.SetDefault("analysis.concurrent_fetches", run.Concurrency)

	th := run.Thresholds
	v.SetDefault("regime.adx_trend", th.ADXTrend)
	v.SetDefault("regime.adx_choppy", th.ADXChoppy)
	v.SetDefault("regime.strong_momentum", th.StrongMomentum)
	v.SetDefault("regime.ma_ratio", th.MARatio)
	v.SetDefault("regime.z_extreme", th.ZExtreme)

	lq := run.Liquidity
	v.SetDefault("liquidity.balance_sheet_id", lq.BalanceSheetID)
	v.SetDefault("liquidity.cash_buffer_id", lq.CashBufferID)
	v.SetDefault("liquidity.overnight_id", lq.OvernightID)
	v.SetDefault("liquidity.balance_sheet_limit", lq.BalanceSheetLimit)
	v.SetDefault("liquidity.cash_buffer_limit", lq.CashBufferLimit)
	v.SetDefault("liquidity.overnight_limit", lq.OvernightLimit)
	v.SetDefault("liquidity.lookback", lq.Params.Lookback)
	v.SetDefault("liquidity.scale", lq.Params.Scale)
	v.SetDefault("liquidity.trend_threshold", lq.Params.TrendThreshold)

	vol := run.Volatility
	v.SetDefault("volatility.symbol", vol.Symbol)
	v.SetDefault("volatility.zscore_window", vol.Params.Window)
	v.SetDefault("volatility.smoothing_span", vol.Params.Span)
	v.SetDefault("volatility.history_years", vol.HistoryYears)
	v.SetDefault("volatility.extreme", vol.Params.Extreme)
	v.SetDefault("volatility.mild", vol.Params.Mild)

	v.SetDefault("output.format", "table")
	v.SetDefault("output.dir", "")

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FRED_API_KEY"); key != "" {
		cfg.Sources.FRED.APIKey = key
	}
	if key := os.Getenv("MARKETPULSE_SOURCES_FRED_API_KEY"); key != "" {
		cfg.Sources.FRED.APIKey = key
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireFREDKey returns ErrMissingFREDKey when no FRED key is configured.
func (c *Config) RequireFREDKey() error {
	if c.Sources.FRED.APIKey == "" {
		return ErrMissingFREDKey
	}
	return nil
}

// TrackerOptions converts the analysis sections to tracker options.
func (c *Config) TrackerOptions() tracker.Options {
	a := c.Analysis
	opts := tracker.DefaultOptions()
	opts.Technical = technical.Params{
		ZScoreWindow:      a.ZScoreWindow,
		MAPeriods:         append([]int(nil), a.MAPeriods...),
		ADXPeriod:         a.ADXPeriod,
		MomentumLookbacks: append([]int(nil), a.MomentumLookbacks...),
		MinWeeks:          a.MinWeeks,
		DailyZScoreWindow: a.DailyZScoreWindow,
		DailyMinBars:      a.DailyMinBars,
	}
	copy(opts.Technical.TEMASpans[:], a.TEMASpans)

	opts.Thresholds = regime.Thresholds{
		ADXTrend:       c.Regime.ADXTrend,
		ADXChoppy:      c.Regime.ADXChoppy,
		StrongMomentum: c.Regime.StrongMomentum,
		MARatio:        c.Regime.MARatio,
		ZExtreme:       c.Regime.ZExtreme,
	}

	lq := c.Liquidity
	opts.Liquidity = tracker.LiquidityOptions{
		BalanceSheetID:    lq.BalanceSheetID,
		CashBufferID:      lq.CashBufferID,
		OvernightID:       lq.OvernightID,
		BalanceSheetLimit: lq.BalanceSheetLimit,
		CashBufferLimit:   lq.CashBufferLimit,
		OvernightLimit:    lq.OvernightLimit,
		Params: liquidity.Params{
			Lookback:       lq.Lookback,
			Scale:          lq.Scale,
			TrendThreshold: lq.TrendThreshold,
		},
	}

	vol := c.Volatility
	opts.Volatility = tracker.VolatilityOptions{
		Symbol:       vol.Symbol,
		HistoryYears: vol.HistoryYears,
		Params: regime.VolatilityParams{
			Window:  vol.ZScoreWindow,
			Span:    vol.SmoothingSpan,
			Extreme: vol.Extreme,
			Mild:    vol.Mild,
		},
	}

	opts.HistoryYears = a.HistoryYears
	opts.FallbackYears = a.FallbackYears
	opts.FallbackMinBars = a.FallbackMinBars
	opts.DailyYears = a.DailyYears
	opts.Concurrency = a.ConcurrentFetches
	return opts
}

// ClientOptions converts the sources section to HTTP client options.
func (c *Config) ClientOptions() infra.ClientOptions {
	opts := infra.DefaultClientOptions()
	s := c.Sources
	opts.Timeout = s.Timeout
	opts.MaxRetries = s.MaxRetries
	opts.RequestsPerSec = s.RequestsPerSec
	opts.Burst = s.Burst
	opts.Breaker.ConsecutiveFailures = s.Breaker.ConsecutiveFailures
	opts.Breaker.Timeout = s.Breaker.Timeout
	return opts
}

// Credentials returns provider secrets for providers.RegisterAll.
func (c *Config) Credentials() providers.Credentials {
	creds := providers.Credentials{}
	if c.Sources.FRED.APIKey != "" {
		creds["fred"] = map[string]string{"api_key": c.Sources.FRED.APIKey}
	}
	return creds
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
