package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordForecast("ridge", "ok", 0.01)
	r.RecordForecast("ridge", "ok", 0.02)
	r.RecordForecast("ridge", "invalid", 0)
	r.RecordClamped("ridge")
	r.RecordCache("hit")
	r.RecordUpstream("error", 0.3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.forecasts.WithLabelValues("ridge", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.forecasts.WithLabelValues("ridge", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.clamped.WithLabelValues("ridge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.upstream.WithLabelValues("error")))
}

func TestNew_IsSingleton(t *testing.T) {
	assert.Same(t, New(), New())
}
