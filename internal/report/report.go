// Package report renders a tracker run as a terminal table, JSON, CSV
// sheets or a standalone HTML page.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// Format specifies the output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatHTML  Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV, FormatHTML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, csv or html)", s)
	}
}

// Sheet is one tabular section of a report. Empty cells are missing values.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Sheet names, in render order.
const (
	SheetMacro    = "Macro"
	SheetWeekly   = "Weekly"
	SheetMomentum = "Momentum"
	SheetDaily    = "Daily"
)

// Sheets flattens a report into its four sections. Sections with no rows
// are omitted.
func Sheets(r models.Report) []Sheet {
	var out []Sheet
	for _, s := range []Sheet{macroSheet(r), weeklySheet(r), momentumSheet(r), dailySheet(r)} {
		if len(s.Rows) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func macroSheet(r models.Report) Sheet {
	s := Sheet{Name: SheetMacro, Header: []string{"Indicator", "Value", "Unit", "Signal", "Detail"}}
	for _, row := range r.Macro {
		value := ""
		if row.Value != nil {
			value = strconv.FormatFloat(round(*row.Value, 2), 'f', -1, 64)
		}
		s.Rows = append(s.Rows, []string{row.Indicator, value, row.Unit, row.Signal, row.Detail})
	}
	return s
}

func weeklySheet(r models.Report) Sheet {
	s := Sheet{Name: SheetWeekly, Header: []string{
		"Name", "Asset", "Price", "Z-Score", "Zone", "TSMOM_%", "MA_Score", "MA_Max",
		"ADX", "Trend", "Regime", "Regime_Bias",
	}}
	for _, a := range r.Assets {
		w := a.Weekly
		if w == nil {
			s.Rows = append(s.Rows, []string{
				a.Name, a.Symbol, "", "", "", "", "", "", "", "", models.SignalError, models.SignalError,
			})
			continue
		}
		s.Rows = append(s.Rows, []string{
			a.Name,
			a.Symbol,
			fixed(w.Price, 4),
			optFloat(w.ZScore, 2),
			string(w.ZScoreZone),
			optFloat(w.Momentum, 2),
			optInt(w.MAScore),
			optInt(w.MAMax),
			optFloat(w.ADX, 1),
			string(w.Trend),
			string(w.Regime.Label),
			w.Regime.Bias,
		})
	}
	return s
}

func momentumSheet(r models.Report) Sheet {
	var lookbacks []int
	seen := map[int]bool{}
	for _, a := range r.Assets {
		if a.Weekly == nil {
			continue
		}
		for _, d := range a.Weekly.MomentumDetails {
			if !seen[d.Lookback] {
				seen[d.Lookback] = true
				lookbacks = append(lookbacks, d.Lookback)
			}
		}
	}

	s := Sheet{Name: SheetMomentum, Header: []string{"Asset"}}
	for _, lb := range lookbacks {
		s.Header = append(s.Header, fmt.Sprintf("%dw_Return_%%", lb))
	}
	s.Header = append(s.Header, "MA_Distance")

	for _, a := range r.Assets {
		if a.Weekly == nil || len(a.Weekly.MomentumDetails) == 0 {
			continue
		}
		byLookback := make(map[int]float64, len(a.Weekly.MomentumDetails))
		for _, d := range a.Weekly.MomentumDetails {
			byLookback[d.Lookback] = d.ReturnPct
		}
		row := []string{a.Symbol}
		for _, lb := range lookbacks {
			if v, ok := byLookback[lb]; ok {
				row = append(row, fixed(v, 2))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, MADistanceText(a.Weekly.MADistance))
		s.Rows = append(s.Rows, row)
	}
	return s
}

func dailySheet(r models.Report) Sheet {
	s := Sheet{Name: SheetDaily, Header: []string{
		"Asset", "Price", "Z-Score_Daily", "Z-Score_Zone",
		"TEMA20", "TEMA50", "TEMA200", "TEMA20_Dist_%", "TEMA50_Dist_%", "TEMA200_Dist_%",
		"Cross_20_50", "Cross_50_200", "TEMA_Alignment", "ADX_Daily", "Trend_Daily",
	}}
	for _, a := range r.Assets {
		d := a.Daily
		if d == nil {
			s.Rows = append(s.Rows, []string{
				a.Symbol, "", "", "", "", "", "", "", "", "",
				models.SignalError, models.SignalError, "", "", models.SignalError,
			})
			continue
		}
		s.Rows = append(s.Rows, []string{
			a.Symbol,
			fixed(d.Price, 4),
			optFloat(d.ZScore, 2),
			string(d.ZScoreZone),
			fixed(d.TEMA20, 2),
			fixed(d.TEMA50, 2),
			fixed(d.TEMA200, 2),
			fixed(d.TEMA20Dist, 2),
			fixed(d.TEMA50Dist, 2),
			fixed(d.TEMA200Dist, 2),
			string(d.Cross20x50),
			string(d.Cross50x200),
			fmt.Sprintf("%d/%d", d.Alignment, d.AlignmentMax),
			fixed(d.ADX, 1),
			string(d.Trend),
		})
	}
	return s
}

// MADistanceText summarises MA distances as "MA20: 1.2%↑ | MA50: 0.4%↓".
func MADistanceText(ds []models.MADistance) string {
	if len(ds) == 0 {
		return "N/A"
	}
	parts := make([]string, len(ds))
	for i, d := range ds {
		arrow := "↓"
		if d.Above {
			arrow = "↑"
		}
		parts[i] = fmt.Sprintf("MA%d: %.1f%%%s", d.Period, math.Abs(d.Pct), arrow)
	}
	return strings.Join(parts, " | ")
}

// ════════════════════════════════════════════════════════════════════
// Renderers
// ════════════════════════════════════════════════════════════════════

// WriteTable renders the report as aligned plain-text sections.
func WriteTable(w io.Writer, r models.Report) error {
	line := strings.Repeat("═", 72)
	if _, err := fmt.Fprintf(w, "%s\n  Market Pulse | %s\n  Portfolio: %s\n%s\n",
		line, r.GeneratedAt.Format("Monday, 2006-01-02 15:04"), r.Portfolio, line); err != nil {
		return err
	}

	for _, s := range Sheets(r) {
		if _, err := fmt.Fprintf(w, "\n■ %s\n", strings.ToUpper(s.Name)); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(s.Header, "\t"))
		for _, row := range s.Rows {
			cells := make([]string, len(row))
			for i, c := range row {
				if c == "" {
					c = "-"
				}
				cells[i] = c
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON renders the full report as indented JSON.
func WriteJSON(w io.Writer, r models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteSheetCSV writes one sheet, header first.
func WriteSheetCSV(w io.Writer, s Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Header); err != nil {
		return fmt.Errorf("writing %s header: %w", s.Name, err)
	}
	if err := cw.WriteAll(s.Rows); err != nil {
		return fmt.Errorf("writing %s rows: %w", s.Name, err)
	}
	return nil
}

// FilePrefix is the timestamp prefix of every output file, e.g. "20240614_0930_".
func FilePrefix(t time.Time) string {
	return t.Format("20060102") + "_" + t.Format("1504") + "_"
}

// Save writes the report into dir in the given format and returns the
// paths written. CSV produces one file per sheet; the other formats a
// single ANALYSIS file.
func Save(dir string, f Format, r models.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	prefix := filepath.Join(dir, FilePrefix(r.GeneratedAt))

	if f == FormatCSV {
		var paths []string
		for _, s := range Sheets(r) {
			path := prefix + strings.ToUpper(s.Name) + ".csv"
			if err := writeFile(path, func(w io.Writer) error { return WriteSheetCSV(w, s) }); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		return paths, nil
	}

	ext := map[Format]string{FormatTable: ".txt", FormatJSON: ".json", FormatHTML: ".html"}[f]
	if ext == "" {
		return nil, fmt.Errorf("unknown output format %q", f)
	}
	path := prefix + "ANALYSIS" + ext
	if err := writeFile(path, func(w io.Writer) error { return Render(w, f, r) }); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// Render writes the report to w. CSV sheets are separated by a blank line
// and a "# <sheet>" marker.
func Render(w io.Writer, f Format, r models.Report) error {
	switch f {
	case FormatTable:
		return WriteTable(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatHTML:
		return WriteHTML(w, r)
	case FormatCSV:
		for i, s := range Sheets(r) {
			sep := ""
			if i > 0 {
				sep = "\n"
			}
			if _, err := fmt.Fprintf(w, "%s# %s\n", sep, s.Name); err != nil {
				return err
			}
			if err := WriteSheetCSV(w, s); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func writeFile(path string, render func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(file); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

// ════════════════════════════════════════════════════════════════════
// Cell formatting
// ════════════════════════════════════════════════════════════════════

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // drop the sign of -0
	}
	return r
}

func fixed(v float64, places int) string {
	return strconv.FormatFloat(round(v, places), 'f', places, 64)
}

func optFloat(v *float64, places int) string {
	if v == nil {
		return ""
	}
	return fixed(*v, places)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
