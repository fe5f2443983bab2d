package metrics

import "github.com/prometheus/client_golang/prometheus"

// ContactMetrics exposes counters for the contact dispatch flow.
type ContactMetrics struct {
	handoffsTotal      *prometheus.CounterVec
	fallbacksTotal     *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
}

func NewContactMetrics(reg prometheus.Registerer) *ContactMetrics {
	m := &ContactMetrics{
		handoffsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "contact",
			Name:      "handoffs_total",
			Help:      "Contact intents handed to the browser, by channel, strategy and environment",
		}, []string{"channel", "strategy", "environment"}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "contact",
			Name:      "fallbacks_total",
			Help:      "New-tab opens that were blocked and fell back to same-tab navigation",
		}, []string{"channel"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "contact",
			Name:      "validation_failures_total",
			Help:      "Contact form field validation failures",
		}, []string{"field"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.handoffsTotal, m.fallbacksTotal, m.validationFailures, m.submissionsTotal)
	return m
}

func (m *ContactMetrics) ObserveHandoff(channel, strategy, environment string, fellBack bool) {
	if m == nil {
		return
	}
	m.handoffsTotal.WithLabelValues(channel, strategy, environment).Inc()
	if fellBack {
		m.fallbacksTotal.WithLabelValues(channel).Inc()
	}
}

func (m *ContactMetrics) ObserveValidationFailure(field string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(field).Inc()
}

// ObserveSubmission records a form submission outcome ("accepted", "rejected" or "busy").
func (m *ContactMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}
