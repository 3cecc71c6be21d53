// Package metrics exposes Prometheus collectors for feed runs.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Entry outcomes, used as the "outcome" label.
const (
	OutcomeDelivered     = "delivered"
	OutcomeNoTitle       = "no_title"
	OutcomeStale         = "stale"
	OutcomeNoMatch       = "no_match"
	OutcomeDuplicate     = "duplicate"
	OutcomeFailed        = "failed"
	OutcomePersistFailed = "persist_failed"
)

// Metrics owns its registry so several instances (tests) never collide.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	runsTotal        prometheus.Counter
	runDuration      prometheus.Histogram
	entriesTotal     *prometheus.CounterVec
	fetchErrorsTotal *prometheus.CounterVec
	seenSetSize      prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedwatch_runs_total",
			Help: "Total number of completed pipeline runs.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedwatch_run_duration_seconds",
			Help:    "Histogram of pipeline run durations.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		entriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedwatch_entries_total",
			Help: "Total number of feed entries processed, labeled by outcome.",
		}, []string{"outcome"}),
		fetchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedwatch_fetch_errors_total",
			Help: "Total number of failed feed fetches, labeled by feed host.",
		}, []string{"host"}),
		seenSetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedwatch_seen_ids",
			Help: "Number of identifiers in the seen-set.",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedwatch_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
	}
	reg.MustRegister(
		m.runsTotal, m.runDuration, m.entriesTotal, m.fetchErrorsTotal, m.seenSetSize, m.lastRunTimestamp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler returns an http.Handler for exposing this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveEntry(outcome string) {
	if m == nil {
		return
	}
	m.entriesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFetchError(feedURL string) {
	if m == nil {
		return
	}
	m.fetchErrorsTotal.WithLabelValues(SanitizeHost(feedURL)).Inc()
}

func (m *Metrics) ObserveRun(took time.Duration, seen int, at time.Time) {
	if m == nil {
		return
	}
	m.runsTotal.Inc()
	m.runDuration.Observe(took.Seconds())
	m.seenSetSize.Set(float64(seen))
	m.lastRunTimestamp.Set(float64(at.Unix()))
}

// SanitizeHost extracts a lower-case hostname for use as a label value.
// It returns "unknown" if the URL has no host.
func SanitizeHost(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
