package health

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordRequest("http", 200, 0.05)
	m.RecordRequest("http", 301, 0.05)
	m.RecordRequest("http", 500, 0.1)
	m.RecordRequest("http", 0, 0) // transport error, no status
	m.RecordRequest("grpc", 200, 0.01)

	assert.Equal(t, 2.0, CounterValue(m.RequestsTotal.WithLabelValues("success", "http")))
	assert.Equal(t, 2.0, CounterValue(m.RequestsTotal.WithLabelValues("error", "http")))
	assert.Equal(t, 1.0, CounterValue(m.RequestsTotal.WithLabelValues("success", "grpc")))
}

func TestGauges(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.SetUserCounts(120, 80)
	assert.Equal(t, 120.0, GaugeValue(m.TargetUsers))
	assert.Equal(t, 80.0, GaugeValue(m.ActiveUsers))

	m.SetVirtualTime(13, 0.5417, true)
	assert.Equal(t, 13.0, GaugeValue(m.VirtualHour))
	assert.InDelta(t, 0.5417, GaugeValue(m.DayFraction), 1e-9)
	assert.Equal(t, 1.0, GaugeValue(m.PeakHourActive))

	m.SetVirtualTime(3, 0.125, false)
	assert.Equal(t, 0.0, GaugeValue(m.PeakHourActive))

	m.SetShapeDone(true)
	assert.Equal(t, 1.0, GaugeValue(m.ShapeDone))

	m.SetTargetHealth(false)
	assert.Equal(t, 0.0, GaugeValue(m.TargetHealth))
}
