package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements Collector using client_golang, mirroring
// monitoring.PrometheusMetrics's shape: one registration call, metrics
// prefixed to avoid collisions, a panic on duplicate registration since
// that indicates a wiring bug caught best at startup.
type Prometheus struct {
	cacheSize      prometheus.Gauge
	cacheOps       *prometheus.CounterVec
	dispatchCount  *prometheus.CounterVec
	dispatchTime   *prometheus.HistogramVec
	commandCount   *prometheus.CounterVec
	commandTime    *prometheus.HistogramVec
	queueDepth     prometheus.Gauge
	comboMatches   *prometheus.CounterVec
}

// NewPrometheus creates and registers a Prometheus-backed Collector
// against reg. Panics on duplicate registration, matching the teacher's
// fail-fast startup behavior.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "odilia_cache_items",
			Help: "Current number of accessibles held in the cache.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odilia_cache_ops_total",
			Help: "Cache operations partitioned by op and hit/miss.",
		}, []string{"op", "hit"}),
		dispatchCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odilia_event_dispatches_total",
			Help: "AT-SPI event dispatches partitioned by interface.member.",
		}, []string{"event"}),
		dispatchTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "odilia_event_dispatch_seconds",
			Help:    "Time to run all handlers for one AT-SPI event.",
			Buckets: prometheus.DefBuckets,
		}, []string{"event"}),
		commandCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odilia_commands_total",
			Help: "Commands processed, partitioned by kind and error.",
		}, []string{"kind", "error"}),
		commandTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "odilia_command_seconds",
			Help:    "Time to run all handlers for one command.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "odilia_command_queue_depth",
			Help: "Current depth of the command queue.",
		}),
		comboMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odilia_combo_matches_total",
			Help: "Keybinding combo matches partitioned by screen-reader mode.",
		}, []string{"mode"}),
	}
	reg.MustRegister(
		p.cacheSize, p.cacheOps, p.dispatchCount, p.dispatchTime,
		p.commandCount, p.commandTime, p.queueDepth, p.comboMatches,
	)
	return p
}

func (p *Prometheus) RecordCacheSize(n int) { p.cacheSize.Set(float64(n)) }

func (p *Prometheus) RecordCacheOp(op string, hit bool) {
	p.cacheOps.WithLabelValues(op, boolLabel(hit)).Inc()
}

func (p *Prometheus) RecordDispatch(event string, handlerCount int, d time.Duration) {
	p.dispatchCount.WithLabelValues(event).Add(float64(handlerCount))
	p.dispatchTime.WithLabelValues(event).Observe(d.Seconds())
}

func (p *Prometheus) RecordCommand(kind string, d time.Duration, errored bool) {
	p.commandCount.WithLabelValues(kind, boolLabel(errored)).Inc()
	p.commandTime.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *Prometheus) RecordQueueDepth(depth int) { p.queueDepth.Set(float64(depth)) }

func (p *Prometheus) RecordComboMatch(mode string) { p.comboMatches.WithLabelValues(mode).Inc() }

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
