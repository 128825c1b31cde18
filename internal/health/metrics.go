package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for hightide.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	ActiveUsers       prometheus.Gauge
	TargetUsers       prometheus.Gauge
	SpawnedUsersTotal prometheus.Counter
	StoppedUsersTotal prometheus.Counter
	VirtualHour       prometheus.Gauge
	DayFraction       prometheus.Gauge
	PeakHourActive    prometheus.Gauge
	ShapeDone         prometheus.Gauge
	TargetHealth      prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the metrics on a caller-supplied registry.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hightide",
				Name:      "requests_total",
				Help:      "Total number of requests by status and protocol",
			},
			[]string{"status", "protocol"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hightide",
				Name:      "request_duration_seconds",
				Help:      "Request latency histogram",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"protocol"},
		),
		ActiveUsers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hightide",
				Name:      "active_users",
				Help:      "Number of virtual users currently running",
			},
		),
		TargetUsers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hightide",
				Name:      "target_users",
				Help:      "Target user count from the load shape",
			},
		),
		SpawnedUsersTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hightide",
				Name:      "spawned_users_total",
				Help:      "Total virtual users spawned over the run",
			},
		),
		StoppedUsersTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hightide",
				Name:      "stopped_users_total",
				Help:      "Total virtual users stopped over the run",
			},
		),
		VirtualHour: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hightide",
				Name:      "virtual_hour",
				Help:      "Current virtual hour of day (0-23)",
			},
		),
		DayFraction: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hightide",
				Name:      "day_fraction",
				Help:      "Fraction of the current virtual day elapsed [0,1)",
			},
		),
		PeakHourActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hightide",
				Name:      "peak_hour_active",
				Help:      "Whether the current virtual hour carries the peak bonus (1=yes)",
			},
		),
		ShapeDone: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hightide",
				Name:      "shape_done",
				Help:      "Whether the load shape has signalled run completion (1=yes)",
			},
		),
		TargetHealth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hightide",
				Name:      "target_health",
				Help:      "Health status of the scenario host (1=healthy)",
			},
		),
	}
}

// RecordRequest records metrics for a completed request.
func (m *Metrics) RecordRequest(protocol string, statusCode int, durationSeconds float64) {
	status := "success"
	if statusCode >= 400 || statusCode == 0 {
		status = "error"
	}

	m.RequestsTotal.WithLabelValues(status, protocol).Inc()
	m.RequestDuration.WithLabelValues(protocol).Observe(durationSeconds)
}

// SetUserCounts updates the target and active user gauges.
func (m *Metrics) SetUserCounts(target, active int) {
	m.TargetUsers.Set(float64(target))
	m.ActiveUsers.Set(float64(active))
}

// SetVirtualTime updates the virtual time gauges.
func (m *Metrics) SetVirtualTime(hour int, dayFraction float64, peak bool) {
	m.VirtualHour.Set(float64(hour))
	m.DayFraction.Set(dayFraction)
	setBool(m.PeakHourActive, peak)
}

// SetShapeDone updates the shape completion gauge.
func (m *Metrics) SetShapeDone(done bool) {
	setBool(m.ShapeDone, done)
}

// SetTargetHealth updates the health status gauge.
func (m *Metrics) SetTargetHealth(healthy bool) {
	setBool(m.TargetHealth, healthy)
}

func setBool(g prometheus.Gauge, v bool) {
	if v {
		g.Set(1)
	} else {
		g.Set(0)
	}
}

// GaugeValue reads the current value of a gauge back out of the client
// library. Used by the status surface and tests.
func GaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

// CounterValue reads the current value of a counter.
func CounterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
