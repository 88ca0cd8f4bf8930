package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReminderMetrics exposes counters/histograms for the reminder scheduler.
type ReminderMetrics struct {
	ticksTotal     prometheus.Counter
	remindersTotal *prometheus.CounterVec
	tickDuration   prometheus.Histogram
}

func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookline",
			Subsystem: "reminders",
			Name:      "ticks_total",
			Help:      "Total reminder scheduler ticks",
		}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookline",
			Subsystem: "reminders",
			Name:      "dispatched_total",
			Help:      "Reminder dispatch outcomes",
		}, []string{"outcome"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bookline",
			Subsystem: "reminders",
			Name:      "tick_duration_seconds",
			Help:      "Duration of one reminder tick",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.ticksTotal, m.remindersTotal, m.tickDuration)
	return m
}

func (m *ReminderMetrics) ObserveTick(seconds float64) {
	if m == nil {
		return
	}
	m.ticksTotal.Inc()
	m.tickDuration.Observe(seconds)
}

// ObserveDispatch records one reminder outcome: "sent", "send_failed",
// "flag_failed", or "skipped".
func (m *ReminderMetrics) ObserveDispatch(outcome string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(outcome).Inc()
}

// EmailMetrics exposes counters for the notification pipeline.
type EmailMetrics struct {
	sendsTotal *prometheus.CounterVec
}

func NewEmailMetrics(reg prometheus.Registerer) *EmailMetrics {
	m := &EmailMetrics{
		sendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookline",
			Subsystem: "email",
			Name:      "sends_total",
			Help:      "Email send outcomes by template type",
		}, []string{"template", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sendsTotal)
	return m
}

func (m *EmailMetrics) ObserveSend(template, status string) {
	if m == nil {
		return
	}
	m.sendsTotal.WithLabelValues(template, status).Inc()
}
