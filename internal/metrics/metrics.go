// Package metrics records run outcomes and upstream fetch latency with
// Prometheus collectors on a private registry, and can export them to a
// node_exporter textfile.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/seenimoa/marketpulse/internal/analysis/technical"
	"github.com/seenimoa/marketpulse/internal/infra"
	"github.com/seenimoa/marketpulse/pkg/models"
)

const namespace = "marketpulse"

// Outcome label values.
const (
	OutcomeOK           = "ok"
	OutcomeError        = "error"
	OutcomeInsufficient = "insufficient"
)

// Recorder implements tracker.Recorder and infra.FetchObserver.
type Recorder struct {
	registry *prometheus.Registry

	evaluations *prometheus.CounterVec
	regimes     *prometheus.CounterVec
	macro       *prometheus.GaugeVec
	fetches     *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	lastRun     prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Asset evaluations by timeframe and outcome",
			},
			[]string{"timeframe", "outcome"},
		),
		regimes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "regimes_total",
				Help:      "Weekly regime classifications by label",
			},
			[]string{"regime"},
		),
		macro: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "macro_indicator_up",
				Help:      "1 if the macro indicator was computed on the last run",
			},
			[]string{"indicator"},
		),
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Upstream GET requests by host and status class",
			},
			[]string{"host", "status"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Upstream GET latency including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Registry exposes the private registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveAsset counts one timeframe evaluation.
func (r *Recorder) ObserveAsset(timeframe string, err error) {
	r.evaluations.WithLabelValues(timeframe, outcome(err)).Inc()
}

// ObserveRegime counts one weekly regime label.
func (r *Recorder) ObserveRegime(label models.RegimeLabel) {
	r.regimes.WithLabelValues(string(label)).Inc()
}

// ObserveMacro records whether a macro indicator was computed.
func (r *Recorder) ObserveMacro(indicator string, err error) {
	v := 1.0
	if err != nil {
		v = 0
	}
	r.macro.WithLabelValues(indicator).Set(v)
}

// ObserveFetch records one upstream GET.
func (r *Recorder) ObserveFetch(host string, status int, elapsed time.Duration, err error) {
	r.fetches.WithLabelValues(host, statusClass(status, err)).Inc()
	r.latency.WithLabelValues(host).Observe(elapsed.Seconds())
}

// MarkRun stamps the completion time of a run.
func (r *Recorder) MarkRun(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes every metric to path in the text exposition format,
// atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

var _ infra.FetchObserver = (*Recorder)(nil)

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, technical.ErrInsufficientData):
		return OutcomeInsufficient
	default:
		return OutcomeError
	}
}

func statusClass(status int, err error) string {
	switch {
	case status == 0 && err != nil:
		return "transport_error"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
