// Package metrics exposes Prometheus collectors for routing and lifecycle.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. Register them once per registry.
type Metrics struct {
	ReportsRouted   *prometheus.CounterVec
	Confidence      *prometheus.HistogramVec
	StatusUpdates   *prometheus.CounterVec
	Classifications *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReportsRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reports_routed_total",
			Help: "Reports routed to an entity, by entity and assignment mode.",
		}, []string{"entity", "mode"}),
		Confidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "report_classification_confidence",
			Help:    "Confidence of automatic classifications.",
			Buckets: []float64{50, 65, 75, 85, 90, 95, 98},
		}, []string{"entity"}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_status_updates_total",
			Help: "Administrative status changes, by target status.",
		}, []string{"status"}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_classification_previews_total",
			Help: "Classifier previews served, by entity and confidence band.",
		}, []string{"entity", "confidence"}),
	}

	reg.MustRegister(m.ReportsRouted, m.Confidence, m.StatusUpdates, m.Classifications)
	return m
}

// ObserveRouted records a routing decision.
func (m *Metrics) ObserveRouted(entity string, manual bool, confidence int) {
	if m == nil {
		return
	}
	mode := "auto"
	if manual {
		mode = "manual"
	}
	m.ReportsRouted.WithLabelValues(entity, mode).Inc()
	if !manual {
		m.Confidence.WithLabelValues(entity).Observe(float64(confidence))
	}
}

// ObservePreview records a classification preview.
func (m *Metrics) ObservePreview(entity string, confidence int) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(entity, strconv.Itoa(confidence)).Inc()
}

// ObserveStatus records a status change.
func (m *Metrics) ObserveStatus(status string) {
	if m == nil {
		return
	}
	m.StatusUpdates.WithLabelValues(status).Inc()
}
