package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketpulse/internal/config"
	"github.com/seenimoa/marketpulse/internal/metrics"
	"github.com/seenimoa/marketpulse/internal/report"
	"github.com/seenimoa/marketpulse/internal/tracker"
	"github.com/seenimoa/marketpulse/pkg/models"
)

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, buf.String(), "marketpulse dev")
}

func TestResolveOutput(t *testing.T) {
	withConfig(t, &config.Config{
		Output:  config.OutputConfig{Format: "json", Dir: "reports"},
		Metrics: config.MetricsConfig{Textfile: "/tmp/mp.prom"},
	})

	out, err := resolveOutput("", "", "")
	require.NoError(t, err)
	assert.Equal(t, outputOptions{format: report.FormatJSON, dir: "reports", metrics: "/tmp/mp.prom"}, out)

	out, err = resolveOutput("csv", "elsewhere", "")
	require.NoError(t, err)
	assert.Equal(t, report.FormatCSV, out.format)
	assert.Equal(t, "elsewhere", out.dir)

	_, err = resolveOutput("xlsx", "", "")
	assert.Error(t, err)
}

func TestEmit(t *testing.T) {
	a := &app{log: zerolog.Nop(), metrics: metrics.New()}
	rep := models.Report{
		GeneratedAt: time.Date(2024, 6, 14, 9, 30, 0, 0, time.UTC),
		Portfolio:   "test",
		Macro:       []models.MacroRow{models.ErrorRow(tracker.IndicatorVIX)},
	}

	var buf bytes.Buffer
	require.NoError(t, a.emit(&buf, rep, outputOptions{format: report.FormatTable}))
	assert.Contains(t, buf.String(), "Portfolio: test")

	dir := t.TempDir()
	prom := filepath.Join(dir, "mp.prom")
	buf.Reset()
	require.NoError(t, a.emit(&buf, rep, outputOptions{format: report.FormatCSV, dir: dir, metrics: prom}))
	assert.Contains(t, buf.String(), "20240614_0930_MACRO.csv")

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "marketpulse_last_run_timestamp_seconds")
}
