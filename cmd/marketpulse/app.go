package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/marketpulse/internal/config"
	"github.com/seenimoa/marketpulse/internal/datasource"
	"github.com/seenimoa/marketpulse/internal/infra"
	"github.com/seenimoa/marketpulse/internal/metrics"
	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/internal/providers"
	"github.com/seenimoa/marketpulse/internal/report"
	"github.com/seenimoa/marketpulse/internal/tracker"
	"github.com/seenimoa/marketpulse/pkg/models"
)

// app bundles the components one command needs.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	metrics  *metrics.Recorder
	registry *provider.Registry
	sources  *datasource.Sources
	tracker  *tracker.Tracker
}

// newApp wires config → HTTP client → providers → sources → tracker.
func newApp(cfg *config.Config, log zerolog.Logger, opts tracker.Options) (*app, error) {
	rec := metrics.New()

	client := infra.NewClient(cfg.ClientOptions(), log)
	client.SetObserver(rec)
	infra.SetDefaultClient(client)

	reg := provider.NewRegistry()
	if err := providers.RegisterAll(reg, cfg.Credentials()); err != nil {
		return nil, fmt.Errorf("registering providers: %w", err)
	}

	src := datasource.NewSources(reg, log)
	trk := tracker.New(src, src, src, opts, log)
	trk.SetRecorder(rec)

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  rec,
		registry: reg,
		sources:  src,
		tracker:  trk,
	}, nil
}

// outputOptions are the rendering flags shared by report commands.
type outputOptions struct {
	format  report.Format
	dir     string
	metrics string
}

// emit renders rep to stdout, or into dir when one is set. CSV always goes
// to files; without a dir it uses ./output.
func (a *app) emit(w io.Writer, rep models.Report, out outputOptions) error {
	dir := out.dir
	if dir == "" && out.format == report.FormatCSV {
		dir = "output"
	}

	if dir == "" {
		if err := report.Render(w, out.format, rep); err != nil {
			return err
		}
	} else {
		paths, err := report.Save(dir, out.format, rep)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(w, "  - %s\n", p)
		}
		a.log.Info().Str("dir", dir).Int("files", len(paths)).Msg("report saved")
	}

	if out.metrics != "" {
		a.metrics.MarkRun(time.Now())
		if err := a.metrics.WriteTextfile(out.metrics); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// resolveOutput merges command flags over the config.
func resolveOutput(formatFlag, dirFlag, metricsFlag string) (outputOptions, error) {
	name := cfg.Output.Format
	if formatFlag != "" {
		name = formatFlag
	}
	f, err := report.ParseFormat(name)
	if err != nil {
		return outputOptions{}, err
	}
	out := outputOptions{format: f, dir: cfg.Output.Dir, metrics: cfg.Metrics.Textfile}
	if dirFlag != "" {
		out.dir = dirFlag
	}
	if metricsFlag != "" {
		out.metrics = metricsFlag
	}
	return out, nil
}
