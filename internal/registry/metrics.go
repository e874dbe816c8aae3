package registry

import "github.com/prometheus/client_golang/prometheus"

// Metrics 收敛注册表相关指标。
type Metrics struct {
	registrations *prometheus.CounterVec
	expirations   prometheus.Counter
	active        prometheus.Gauge
}

// NewMetrics 构造指标集合，reg 为空时默认使用全局注册器。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jadesigner",
			Subsystem: "registry",
			Name:      "registrations_total",
			Help:      "UI registrations by kind (new, refresh, supersede, deregister)",
		}, []string{"kind"}),
		expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jadesigner",
			Subsystem: "registry",
			Name:      "expirations_total",
			Help:      "UI registrations dropped after the inactivity window",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jadesigner",
			Subsystem: "registry",
			Name:      "active",
			Help:      "1 when a UI registration is active",
		}),
	}
	reg.MustRegister(m.registrations, m.expirations, m.active)
	return m
}

func (m *Metrics) incRegistration(kind string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(kind).Inc()
}

func (m *Metrics) incExpiration() {
	if m == nil {
		return
	}
	m.expirations.Inc()
}

func (m *Metrics) setActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.active.Set(1)
		return
	}
	m.active.Set(0)
}
