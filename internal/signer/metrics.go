package signer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 记录签名请求的终态与解锁队列状态。
type Metrics struct {
	requests      *prometheus.CounterVec
	pending       prometheus.Gauge
	queueDepth    prometheus.Gauge
	unlockLatency *prometheus.HistogramVec
	lateResponses *prometheus.CounterVec
}

// NewMetrics 构造 Metrics，reg 为空则注册到默认注册器。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jadesigner",
			Subsystem: "signer",
			Name:      "requests_total",
			Help:      "Sign requests by terminal outcome",
		}, []string{"outcome", "code"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jadesigner",
			Subsystem: "signer",
			Name:      "pending_requests",
			Help:      "Sign requests waiting for a terminal outcome",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jadesigner",
			Subsystem: "signer",
			Name:      "unlock_queue_depth",
			Help:      "Unlocks waiting for the unlock worker",
		}),
		unlockLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jadesigner",
			Subsystem: "signer",
			Name:      "unlock_latency_ms",
			Help:      "Latency of keystore unlocks in milliseconds",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2000, 5000},
		}, []string{"result"}),
		lateResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jadesigner",
			Subsystem: "signer",
			Name:      "rejected_responses_total",
			Help:      "UI responses rejected because the request was retired or already answered",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.requests, m.pending, m.queueDepth, m.unlockLatency, m.lateResponses)
	return m
}

func (m *Metrics) incRequest(outcome, code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(labelOrUnknown(outcome), labelOrNone(code)).Inc()
}

func (m *Metrics) incPending() {
	if m == nil {
		return
	}
	m.pending.Inc()
}

func (m *Metrics) decPending() {
	if m == nil {
		return
	}
	m.pending.Dec()
}

func (m *Metrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) observeUnlock(d time.Duration, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.unlockLatency.WithLabelValues(result).Observe(float64(d.Microseconds()) / 1000)
}

func (m *Metrics) incRejectedResponse(reason string) {
	if m == nil {
		return
	}
	m.lateResponses.WithLabelValues(labelOrUnknown(reason)).Inc()
}

func labelOrUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

func labelOrNone(value string) string {
	if value == "" {
		return "none"
	}
	return value
}
