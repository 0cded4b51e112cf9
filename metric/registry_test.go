package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry_RegistersCoreMetrics(t *testing.T) {
	reg := NewMetricsRegistry()
	require.NotNil(t, reg.CoreMetrics())

	reg.CoreMetrics().RecordRead("node", "tabular")
	reg.CoreMetrics().RecordDropped("edge", "INVALID_CURIE")

	families, err := reg.PrometheusRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetricsRegistry_RegisterCounter_DuplicateRejected(t *testing.T) {
	reg := NewMetricsRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "custom_total"})

	require.NoError(t, reg.RegisterCounter("validator", "custom_total", counter))
	assert.Error(t, reg.RegisterCounter("validator", "custom_total", counter))
}

func TestMetricsRegistry_Unregister(t *testing.T) {
	reg := NewMetricsRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "removable_total"})

	require.NoError(t, reg.RegisterCounter("merge", "removable_total", counter))
	assert.True(t, reg.Unregister("merge", "removable_total"))
	assert.False(t, reg.Unregister("merge", "removable_total"))
}
