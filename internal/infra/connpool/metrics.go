package connpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 暴露回调连接池的连接数、重连次数与借用延迟。
type Metrics struct {
	activeConns    *prometheus.GaugeVec
	reconnects     *prometheus.CounterVec
	acquireLatency *prometheus.HistogramVec
}

// NewMetrics 在注册器中注册指标，reg 为空时使用默认注册器。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		activeConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "jadesigner",
			Subsystem: "callback_pool",
			Name:      "active_conns",
			Help:      "Number of established gRPC connections per callback target",
		}, []string{"target"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jadesigner",
			Subsystem: "callback_pool",
			Name:      "transient_failures_total",
			Help:      "Number of times a callback connection entered TRANSIENT_FAILURE",
		}, []string{"target"}),
		acquireLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jadesigner",
			Subsystem: "callback_pool",
			Name:      "acquire_latency_ms",
			Help:      "Time spent waiting for a pooled callback connection in milliseconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 2000},
		}, []string{"target"}),
	}
	reg.MustRegister(m.activeConns, m.reconnects, m.acquireLatency)
	return m
}

func (m *Metrics) setActive(target string, value float64) {
	m.activeConns.WithLabelValues(target).Set(value)
}

func (m *Metrics) incTransientFailure(target string) {
	m.reconnects.WithLabelValues(target).Inc()
}

func (m *Metrics) observeAcquire(target string, duration time.Duration) {
	m.acquireLatency.WithLabelValues(target).Observe(duration.Seconds() * 1000)
}

func (m *Metrics) forget(target string) {
	m.activeConns.DeleteLabelValues(target)
	m.reconnects.DeleteLabelValues(target)
	m.acquireLatency.DeleteLabelValues(target)
}
