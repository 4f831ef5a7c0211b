package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the runtime.
type Metrics struct {
	// Protocol metrics
	InstructionsTotal *prometheus.CounterVec
	DispatchErrors    *prometheus.CounterVec
	DispatchDuration  *prometheus.HistogramVec

	// Tree metrics
	WidgetsLive     prometheus.Gauge
	WidgetsCreated  prometheus.Counter
	WidgetsRemoved  prometheus.Counter
	FramesRequested prometheus.Counter

	// Style metrics
	StyleBatches  prometheus.Counter
	StylesStored  prometheus.Gauge
	TreeReapplies prometheus.Counter

	// Transport metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		InstructionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loom_instructions_total",
				Help: "Total number of protocol instructions dispatched",
			},
			[]string{"op"},
		),
		DispatchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loom_dispatch_errors_total",
				Help: "Total number of instruction dispatch failures",
			},
			[]string{"op"},
		),
		DispatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loom_dispatch_duration_seconds",
				Help:    "Instruction dispatch duration in seconds",
				Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
			},
			[]string{"op"},
		),

		WidgetsLive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loom_widgets_live",
			Help: "Number of live widget nodes",
		}),
		WidgetsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loom_widgets_created_total",
			Help: "Total number of widgets materialized",
		}),
		WidgetsRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loom_widgets_removed_total",
			Help: "Total number of widget nodes evicted",
		}),
		FramesRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loom_frames_requested_total",
			Help: "Total number of frame requests received",
		}),

		StyleBatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loom_style_batches_total",
			Help: "Total number of AddStyles batches processed",
		}),
		StylesStored: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loom_styles_stored",
			Help: "Number of registered styles",
		}),
		TreeReapplies: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loom_tree_reapplies_total",
			Help: "Total number of full-tree style reapplications",
		}),

		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loom_ws_connections",
			Help: "Number of open producer connections",
		}),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loom_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"type"},
		),

		Uptime: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loom_uptime_seconds",
			Help: "Runtime uptime in seconds",
		}),
	}
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
