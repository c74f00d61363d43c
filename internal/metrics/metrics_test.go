package metrics_test

import (
	"testing"

	"reportes/backend/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRouted(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveRouted("Bomberos", false, 95)
	m.ObserveRouted("Bomberos", false, 98)
	m.ObserveRouted("Policía", true, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportsRouted.WithLabelValues("Bomberos", "auto")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsRouted.WithLabelValues("Policía", "manual")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Confidence), "manual routing has no confidence sample")
}

func TestObserveStatusAndPreview(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveStatus("resuelto")
	m.ObservePreview("Hospital", 90)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusUpdates.WithLabelValues("resuelto")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Classifications.WithLabelValues("Hospital", "90")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveRouted("x", false, 50)
		m.ObservePreview("x", 50)
		m.ObserveStatus("pendiente")
	})
}
