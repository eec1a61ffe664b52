// Package metrics exports run counters in the Prometheus text format so a
// scheduled sync can be scraped through the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

const namespace = "hfrsync"

// Metrics holds every collector of a run. It implements reconciler.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	created      *prometheus.CounterVec
	renamed      *prometheus.CounterVec
	reparented   *prometheus.CounterVec
	retagged     *prometheus.CounterVec
	realigned    prometheus.Counter
	anomalies    *prometheus.CounterVec
	recordErrors *prometheus.CounterVec
	pages        *prometheus.CounterVec
	aborted      *prometheus.CounterVec
	feedDuration *prometheus.GaugeVec
	lastSuccess  prometheus.Gauge
}

var _ reconciler.Recorder = (*Metrics)(nil)

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_created_total",
			Help:      "Locations created in the registry, by hierarchy level.",
		}, []string{"level"}),
		renamed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_renamed_total",
			Help:      "Locations renamed to match upstream, by hierarchy level.",
		}, []string{"level"}),
		reparented: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_reparented_total",
			Help:      "Locations moved under a new parent, by hierarchy level.",
		}, []string{"level"}),
		retagged: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_retagged_total",
			Help:      "Locations given an extra level tag, by added level.",
		}, []string{"level"}),
		realigned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_realigned_total",
			Help:      "Village children moved or recoded under a facility's ward.",
		}),
		anomalies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_anomalies_total",
			Help:      "Records or levels skipped because of a data problem, by kind.",
		}, []string{"kind"}),
		recordErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_record_errors_total",
			Help:      "Upstream records that failed to reconcile, by feed.",
		}, []string{"feed"}),
		pages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_pages_total",
			Help:      "Upstream pages processed, by feed.",
		}, []string{"feed"}),
		aborted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_aborted_total",
			Help:      "Feeds abandoned after exhausting their page retry ceiling.",
		}, []string{"feed"}),
		feedDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_duration_seconds",
			Help:      "Wall time of the last run of each feed.",
		}, []string{"feed"}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without errors.",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func level(tag locations.Tag) string {
	if tag == "" {
		return "unknown"
	}
	return tag.String()
}

func levelOf(loc *locations.Location) string {
	if loc == nil {
		return level("")
	}
	return level(loc.Level())
}

// Created implements reconciler.Recorder.
func (m *Metrics) Created(loc *locations.Location) {
	m.created.WithLabelValues(levelOf(loc)).Inc()
}

// Renamed implements reconciler.Recorder.
func (m *Metrics) Renamed(loc *locations.Location, _ string) {
	m.renamed.WithLabelValues(levelOf(loc)).Inc()
}

// Reparented implements reconciler.Recorder.
func (m *Metrics) Reparented(loc *locations.Location, _ string) {
	m.reparented.WithLabelValues(levelOf(loc)).Inc()
}

// Realigned implements reconciler.Recorder.
func (m *Metrics) Realigned(*locations.Location) {
	m.realigned.Inc()
}

// Retagged implements reconciler.Recorder.
func (m *Metrics) Retagged(_ *locations.Location, added locations.Tag) {
	m.retagged.WithLabelValues(level(added)).Inc()
}

// Anomaly implements reconciler.Recorder.
func (m *Metrics) Anomaly(a reconciler.Anomaly) {
	m.anomalies.WithLabelValues(string(a.Kind)).Inc()
}

// FeedFinished records the outcome of one feed.
func (m *Metrics) FeedFinished(feed string, pages, recordErrors int, aborted bool, d time.Duration) {
	m.pages.WithLabelValues(feed).Add(float64(pages))
	m.recordErrors.WithLabelValues(feed).Add(float64(recordErrors))
	if aborted {
		m.aborted.WithLabelValues(feed).Inc()
	}
	m.feedDuration.WithLabelValues(feed).Set(d.Seconds())
}

// RunSucceeded stamps the time of a run that finished without errors.
func (m *Metrics) RunSucceeded(at time.Time) {
	m.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes every collector to path in the text exposition
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return &errors.ValidationError{Field: "path", Message: "textfile path is required"}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
