package reminder

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	submitted *prometheus.CounterVec
	cancelled *prometheus.CounterVec
	failures  *prometheus.CounterVec
	rollovers prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nudge_alerts_submitted_total",
			Help: "Alerts handed to the delivery service, by slot kind.",
		}, []string{"slot"}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nudge_alerts_cancelled_total",
			Help: "Alerts retracted from the delivery service, by reason.",
		}, []string{"reason"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nudge_alert_failures_total",
			Help: "Delivery service calls that failed, by operation.",
		}, []string{"op"}),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nudge_rollovers_total",
			Help: "Tasks whose stale completion was reset by daily rollover.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.submitted, m.cancelled, m.failures, m.rollovers)
	}
	return m
}

func (m *Metrics) observeSubmitted(slot string) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(slot).Inc()
}

func (m *Metrics) observeCancelled(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.cancelled.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) observeFailure(op string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(op).Inc()
}

func (m *Metrics) observeRollover() {
	if m == nil {
		return
	}
	m.rollovers.Inc()
}
