package report

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// htmlData is the model passed to htmlTemplate.
type htmlData struct {
	Title       string
	GeneratedAt string
	Portfolio   string
	Gauges      []template.HTML
	ZChart      template.HTML
	Sheets      []Sheet
}

var pageTemplate = template.Must(template.New("report").
	Funcs(template.FuncMap{"cellClass": cellClass}).
	Parse(htmlTemplate))

// WriteHTML renders the report as a standalone HTML page with a gauge per
// sentiment reading and a weekly z-score chart.
func WriteHTML(w io.Writer, r models.Report) error {
	data := htmlData{
		Title:       "Market Pulse",
		GeneratedAt: r.GeneratedAt.Format("Monday, 02 Jan 2006 15:04"),
		Portfolio:   r.Portfolio,
		Sheets:      Sheets(r),
	}

	for _, s := range r.Sentiment {
		label := fmt.Sprintf("%s · %s", strings.ToUpper(s.Market), s.Label)
		data.Gauges = append(data.Gauges, template.HTML(GaugeChart(float64(s.Value), label, 200)))
	}

	var items []BarItem
	for _, a := range r.Assets {
		if a.Weekly != nil && a.Weekly.ZScore != nil {
			items = append(items, BarItem{Label: a.Symbol, Value: *a.Weekly.ZScore})
		}
	}
	if len(items) > 0 {
		cfg := DefaultChartConfig()
		cfg.Height = max(cfg.Height, 60+28*len(items))
		data.ZChart = template.HTML(ZScoreChart(items, 2, cfg))
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

// cellClass colours a cell by the signal it carries.
func cellClass(cell string) string {
	switch cell {
	case "":
		return "missing"
	case models.SignalError:
		return "err"
	case string(models.RegimeTrendingUp), string(models.RegimeMeanRevertBuy),
		string(models.TrendUp), string(models.CrossBullish),
		string(models.DailyStrongBullish), string(models.DailyBullish),
		string(models.ZoneOversold), string(models.ZoneExtremeOversold),
		string(models.LiquidityExpanding), string(models.VolRiskOn):
		return "bull"
	case string(models.RegimeTrendingDown), string(models.RegimeMeanRevertSell),
		string(models.TrendDown), string(models.CrossBearish),
		string(models.DailyStrongBearish), string(models.DailyBearish),
		string(models.ZoneOverbought), string(models.ZoneExtremeOverbought),
		string(models.LiquidityContracting), string(models.VolRiskOff), string(models.VolFear):
		return "bear"
	case string(models.RegimeChoppy), string(models.VolComplacency):
		return "warn"
	}
	return ""
}
