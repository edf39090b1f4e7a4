package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/teslashibe/go-edgebot/pkg/edge"
)

// Metrics holds the follower's prometheus collectors on a private registry.
//
// Metrics:
//   - edgebot_ticks_total{state} - ticks by classified state
//   - edgebot_decisions_total{reason} - decisions by reason
//   - edgebot_io_errors_total{stage} - sensor and actuation failures
//   - edgebot_memory_active - 1 while edge memory is unexpired
//   - edgebot_sensor_raw{side} - last summed raw reading per side
//   - edgebot_frames_total{result} - frames published or throttled
type Metrics struct {
	registry *prometheus.Registry

	Ticks        *prometheus.CounterVec
	Decisions    *prometheus.CounterVec
	IOErrors     *prometheus.CounterVec
	MemoryActive prometheus.Gauge
	SensorRaw    *prometheus.GaugeVec
	Frames       *prometheus.CounterVec
}

// NewMetrics registers all collectors plus the Go runtime collector on a
// fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Ticks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "edgebot_ticks_total",
			Help: "Control ticks by classified sensor state",
		}, []string{"state"}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "edgebot_decisions_total",
			Help: "Decisions by reason",
		}, []string{"reason"}),
		IOErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "edgebot_io_errors_total",
			Help: "Hardware I/O failures by stage",
		}, []string{"stage"}),
		MemoryActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "edgebot_memory_active",
			Help: "1 while the last edge side is remembered",
		}),
		SensorRaw: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "edgebot_sensor_raw",
			Help: "Last summed raw reading per side",
		}, []string{"side"}),
		Frames: f.NewCounterVec(prometheus.CounterOpts{
			Name: "edgebot_frames_total",
			Help: "Telemetry frames by result",
		}, []string{"result"}),
	}
}

// Registry returns the registry for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one tick report.
func (m *Metrics) Observe(rep edge.Report) {
	switch {
	case errors.Is(rep.Err, edge.ErrSensorRead):
		m.IOErrors.WithLabelValues("sensor").Inc()
		m.Decisions.WithLabelValues(rep.Decision.Reason.String()).Inc()
		return
	case errors.Is(rep.Err, edge.ErrActuation):
		m.IOErrors.WithLabelValues("actuation").Inc()
	}

	m.Ticks.WithLabelValues(rep.Reading.State.String()).Inc()
	m.Decisions.WithLabelValues(rep.Decision.Reason.String()).Inc()
	m.SensorRaw.WithLabelValues("left").Set(float64(rep.Sample.Left))
	m.SensorRaw.WithLabelValues("right").Set(float64(rep.Sample.Right))
	if rep.Memory.Active(rep.At) {
		m.MemoryActive.Set(1)
	} else {
		m.MemoryActive.Set(0)
	}
}
