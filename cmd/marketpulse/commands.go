package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/marketpulse/internal/config"
	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/internal/tracker"
	"github.com/seenimoa/marketpulse/pkg/models"
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "output format: table, json, csv, html (default from config)")
	cmd.Flags().StringP("output-dir", "o", "", "write timestamped files into this directory instead of stdout")
	cmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
}

func outputFromFlags(cmd *cobra.Command) (outputOptions, error) {
	format, _ := cmd.Flags().GetString("format")
	dir, _ := cmd.Flags().GetString("output-dir")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	return resolveOutput(format, dir, metricsFile)
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run [assets-file]",
	Short: "Evaluate every asset in a portfolio plus the macro block",
	Long: `Evaluate every asset in an assets file (JSON or YAML mapping of display
name to ticker) on weekly and daily bars, and report global liquidity,
volatility regime and fear & greed alongside.

Examples:
  marketpulse run
  marketpulse run portfolios/core.json --format csv -o output
  marketpulse run --skip-macro --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "assets.json"
		if len(args) == 1 {
			path = args[0]
		}
		portfolio, err := config.LoadPortfolio(path)
		if err != nil {
			return err
		}

		opts := cfg.TrackerOptions()
		opts.SkipMacro, _ = cmd.Flags().GetBool("skip-macro")
		opts.SkipDaily, _ = cmd.Flags().GetBool("skip-daily")
		if !opts.SkipMacro {
			if err := cfg.RequireFREDKey(); err != nil {
				return fmt.Errorf("%w; set it or pass --skip-macro", err)
			}
		}
		out, err := outputFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, log, opts)
		if err != nil {
			return err
		}
		log.Info().Str("portfolio", portfolio.Name).Int("assets", len(portfolio.Assets)).Msg("fetching market data")

		rep, err := a.tracker.Run(cmd.Context(), portfolio.Name, portfolio.Assets)
		if err != nil {
			return err
		}
		return a.emit(cmd.OutOrStdout(), rep, out)
	},
}

func init() {
	runCmd.Flags().Bool("skip-macro", false, "skip liquidity, volatility and sentiment")
	runCmd.Flags().Bool("skip-daily", false, "skip the daily TEMA evaluation")
	addOutputFlags(runCmd)
}

// --- Asset Command ---

var assetCmd = &cobra.Command{
	Use:   "asset [ticker]",
	Short: "Evaluate a single ticker on weekly and daily bars",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := strings.ToUpper(strings.TrimSpace(args[0]))
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = symbol
		}
		out, err := outputFromFlags(cmd)
		if err != nil {
			return err
		}

		opts := cfg.TrackerOptions()
		opts.SkipMacro = true
		a, err := newApp(cfg, log, opts)
		if err != nil {
			return err
		}

		asset := tracker.Asset{Name: name, Symbol: symbol}
		rep := models.Report{
			GeneratedAt: time.Now(),
			Portfolio:   name,
			Assets:      []models.AssetReport{a.tracker.EvaluateAsset(cmd.Context(), asset)},
		}
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		return a.emit(cmd.OutOrStdout(), rep, out)
	},
}

func init() {
	assetCmd.Flags().String("name", "", "display name (default: the ticker)")
	addOutputFlags(assetCmd)
}

// --- Liquidity Command ---

var liquidityCmd = &cobra.Command{
	Use:   "liquidity",
	Short: "Show the global liquidity gauge (balance sheet - TGA - RRP)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireFREDKey(); err != nil {
			return err
		}
		out, err := outputFromFlags(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, log, cfg.TrackerOptions())
		if err != nil {
			return err
		}

		rec, err := a.tracker.Liquidity(cmd.Context())
		if err != nil {
			return err
		}
		rep := models.Report{
			GeneratedAt: time.Now(),
			Portfolio:   tracker.IndicatorLiquidity,
			Macro:       []models.MacroRow{tracker.LiquidityRow(rec)},
			Liquidity:   &rec,
		}
		return a.emit(cmd.OutOrStdout(), rep, out)
	},
}

// --- Volatility Command ---

var volatilityCmd = &cobra.Command{
	Use:   "volatility",
	Short: "Show the volatility index level and smoothed inverted z-score regime",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := outputFromFlags(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, log, cfg.TrackerOptions())
		if err != nil {
			return err
		}

		rec, err := a.tracker.Volatility(cmd.Context())
		if err != nil {
			return err
		}
		rep := models.Report{
			GeneratedAt: time.Now(),
			Portfolio:   rec.Symbol,
			Macro:       tracker.VolatilityRows(rec),
			Volatility:  &rec,
		}
		return a.emit(cmd.OutOrStdout(), rep, out)
	},
}

// --- Sentiment Command ---

var sentimentCmd = &cobra.Command{
	Use:       "sentiment [stocks|crypto]",
	Short:     "Show fear & greed readings",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{models.MarketStocks, models.MarketCrypto},
	RunE: func(cmd *cobra.Command, args []string) error {
		markets := []string{models.MarketStocks, models.MarketCrypto}
		if len(args) == 1 {
			markets = args
		}
		out, err := outputFromFlags(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, log, cfg.TrackerOptions())
		if err != nil {
			return err
		}

		rep := models.Report{GeneratedAt: time.Now(), Portfolio: "sentiment"}
		for _, m := range markets {
			name := tracker.IndicatorFGStocks
			if m == models.MarketCrypto {
				name = tracker.IndicatorFGCrypto
			}
			s, err := a.tracker.Sentiment(cmd.Context(), m)
			if err != nil {
				log.Warn().Err(err).Str("market", m).Msg("sentiment unavailable")
				rep.Macro = append(rep.Macro, models.ErrorRow(name))
				continue
			}
			rep.Sentiment = append(rep.Sentiment, s)
			rep.Macro = append(rep.Macro, tracker.SentimentRow(name, s))
		}
		if len(rep.Sentiment) == 0 {
			return fmt.Errorf("no sentiment source answered")
		}
		return a.emit(cmd.OutOrStdout(), rep, out)
	},
}

func init() {
	addOutputFlags(liquidityCmd)
	addOutputFlags(volatilityCmd)
	addOutputFlags(sentimentCmd)
}

// --- Providers Command ---

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered data providers and the models they serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, log, cfg.TrackerOptions())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tMODELS\tWEBSITE\tDESCRIPTION")
		for _, info := range a.registry.List() {
			names := make([]string, len(info.Models))
			for i, m := range info.Models {
				names[i] = string(m)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, strings.Join(names, ","), info.Website, info.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "\nModel coverage (default first):")
		coverage := a.registry.ModelCoverage()
		modelNames := make([]string, 0, len(coverage))
		for m := range coverage {
			modelNames = append(modelNames, string(m))
		}
		slices.Sort(modelNames)
		for _, m := range modelNames {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %s\n", m, strings.Join(a.registry.ProvidersFor(provider.ModelType(m)), " → "))
		}
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, API keys and provider connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  marketpulse — System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Time:          %s\n", time.Now().Format("Monday, 2006-01-02 15:04 MST"))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    History:       %dy weekly (fallback %dy), %dy daily\n",
			cfg.Analysis.HistoryYears, cfg.Analysis.FallbackYears, cfg.Analysis.DailyYears)
		fmt.Fprintf(out, "    Windows:       z=%d adx=%d momentum=%v\n",
			cfg.Analysis.ZScoreWindow, cfg.Analysis.ADXPeriod, cfg.Analysis.MomentumLookbacks)
		fmt.Fprintf(out, "    Liquidity:     %s - %s - %s\n",
			cfg.Liquidity.BalanceSheetID, cfg.Liquidity.CashBufferID, cfg.Liquidity.OvernightID)
		fmt.Fprintf(out, "    Volatility:    %s (window %d, span %d)\n",
			cfg.Volatility.Symbol, cfg.Volatility.ZScoreWindow, cfg.Volatility.SmoothingSpan)
		fmt.Fprintf(out, "    Output:        %s %s\n", cfg.Output.Format, cfg.Output.Dir)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				src := string(k.Source)
				if k.EnvVar != "" {
					src = "$" + k.EnvVar
				}
				status = fmt.Sprintf("✅ set (%s: %s)", src, k.Masked)
			} else if k.Required {
				status += " (required for macro)"
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		if ping, _ := cmd.Flags().GetBool("ping"); ping {
			a, err := newApp(cfg, log, cfg.TrackerOptions())
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  Providers:")
			for _, info := range a.registry.List() {
				p, err := a.registry.Get(info.Name)
				if err != nil {
					return err
				}
				status := "✅ reachable"
				if err := p.Ping(cmd.Context()); err != nil {
					status = "❌ " + err.Error()
				}
				fmt.Fprintf(out, "    %-25s %s\n", info.Name+":", status)
			}
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("ping", false, "check connectivity of every provider")
}
