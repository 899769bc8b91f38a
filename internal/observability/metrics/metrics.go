package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the chat widget and lead flow.
type ChatMetrics struct {
	messagesTotal      *prometheus.CounterVec
	leadsTotal         *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	dispatchLatency    prometheus.Histogram
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "truckshop",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat messages classified, by category",
		}, []string{"category"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "truckshop",
			Subsystem: "leads",
			Name:      "submitted_total",
			Help:      "Leads submitted through the chat widget, by type",
		}, []string{"type"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "truckshop",
			Subsystem: "notify",
			Name:      "attempts_total",
			Help:      "Lead notification attempts, by channel and outcome",
		}, []string{"channel", "outcome"}),
		dispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "truckshop",
			Subsystem: "notify",
			Name:      "dispatch_latency_seconds",
			Help:      "Time spent dispatching a lead notification",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.leadsTotal, m.notificationsTotal, m.dispatchLatency)
	return m
}

func (m *ChatMetrics) ObserveMessage(category string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(category).Inc()
}

func (m *ChatMetrics) ObserveLead(leadType string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(leadType).Inc()
}

func (m *ChatMetrics) ObserveNotification(channel string, delivered bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if delivered {
		outcome = "delivered"
	}
	m.notificationsTotal.WithLabelValues(channel, outcome).Inc()
}

func (m *ChatMetrics) ObserveDispatchLatency(seconds float64) {
	if m == nil {
		return
	}
	m.dispatchLatency.Observe(seconds)
}
