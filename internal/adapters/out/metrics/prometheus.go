// Package metrics records dispatch activity as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dispatch"

// Prometheus implements ports.Metrics and the Kafka consumer metrics.
type Prometheus struct {
	claimDuration        *prometheus.HistogramVec
	claimsTotal          *prometheus.CounterVec
	transitionsTotal     *prometheus.CounterVec
	feedRecomputes       *prometheus.CounterVec
	courierAlertsTotal   *prometheus.CounterVec
	couriersMarkedOffline prometheus.Counter
	messagesConsumed     *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		claimDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "claim",
			Name:      "duration_seconds",
			Help:      "Claim latency in seconds, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		claimsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claim",
			Name:      "total",
			Help:      "Total number of claim attempts by outcome.",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "transitions_total",
			Help:      "Total number of lifecycle transitions by transition and outcome.",
		}, []string{"transition", "outcome"}),
		feedRecomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "recomputes_total",
			Help:      "Total number of feed projections computed for live subscriptions.",
		}, []string{"courier_busy"}),
		courierAlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "published_total",
			Help:      "Total number of courier alerts published.",
		}, []string{"on_route"}),
		couriersMarkedOffline: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "presence",
			Name:      "couriers_marked_offline_total",
			Help:      "Total number of couriers marked offline for stale locations.",
		}),
		messagesConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka_consumer",
			Name:      "messages_total",
			Help:      "Total number of consumed messages by topic and outcome.",
		}, []string{"topic", "outcome"}),
	}

	reg.MustRegister(
		m.claimDuration,
		m.claimsTotal,
		m.transitionsTotal,
		m.feedRecomputes,
		m.courierAlertsTotal,
		m.couriersMarkedOffline,
		m.messagesConsumed,
	)
	return m
}

func (m *Prometheus) ObserveClaim(outcome string, duration time.Duration) {
	m.claimsTotal.WithLabelValues(outcome).Inc()
	m.claimDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Prometheus) IncTransition(transition, outcome string) {
	m.transitionsTotal.WithLabelValues(transition, outcome).Inc()
}

func (m *Prometheus) IncFeedRecompute(courierBusy bool) {
	m.feedRecomputes.WithLabelValues(strconv.FormatBool(courierBusy)).Inc()
}

func (m *Prometheus) AddCourierAlerts(onRoute bool, n int) {
	if n <= 0 {
		return
	}
	m.courierAlertsTotal.WithLabelValues(strconv.FormatBool(onRoute)).Add(float64(n))
}

func (m *Prometheus) AddCouriersMarkedOffline(n int) {
	if n <= 0 {
		return
	}
	m.couriersMarkedOffline.Add(float64(n))
}

func (m *Prometheus) IncConsumed(topic, outcome string) {
	m.messagesConsumed.WithLabelValues(topic, outcome).Inc()
}
