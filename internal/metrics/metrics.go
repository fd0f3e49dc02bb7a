// Package metrics exposes brand manual counters on a private prometheus
// registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-brandmanual/pkg/assemble"
)

// Metrics records assembler and export activity.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsAssembled *prometheus.CounterVec
	AssembleFailures   *prometheus.CounterVec
	AssembleDuration   *prometheus.HistogramVec
	Exports            *prometheus.CounterVec
}

var _ assemble.Observer = (*Metrics)(nil)

// New registers every collector on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DocumentsAssembled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brandmanual_documents_assembled_total",
				Help: "Total number of brand manual documents assembled",
			},
			[]string{"mode", "template"},
		),
		AssembleFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brandmanual_assemble_failures_total",
				Help: "Total number of failed document assemblies",
			},
			[]string{"mode"},
		),
		AssembleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "brandmanual_assemble_duration_seconds",
				Help:    "Duration of document assembly in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"mode"},
		),
		Exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brandmanual_exports_total",
				Help: "Total number of exports by format",
			},
			[]string{"format"},
		),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveAssemble implements assemble.Observer.
func (m *Metrics) ObserveAssemble(mode assemble.Mode, templateID string, elapsed time.Duration, err error) {
	m.AssembleDuration.WithLabelValues(mode.String()).Observe(elapsed.Seconds())
	if err != nil {
		m.AssembleFailures.WithLabelValues(mode.String()).Inc()
		return
	}
	m.DocumentsAssembled.WithLabelValues(mode.String(), templateID).Inc()
}

// RecordExport counts one completed export.
func (m *Metrics) RecordExport(format string) {
	m.Exports.WithLabelValues(format).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
