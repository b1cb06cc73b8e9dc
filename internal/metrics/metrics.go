// Package metrics содержит Prometheus-метрики сервиса.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fechainstalacao"

// Metrics хранит счётчики вебхуков оплаты и решений гейта.
type Metrics struct {
	registry *prometheus.Registry

	webhookNotifications *prometheus.CounterVec
	gateDecisions        *prometheus.CounterVec
}

// New создаёт метрики в отдельном реестре.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		webhookNotifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_notifications_total",
				Help:      "Payment provider notifications by processing outcome.",
			},
			[]string{"outcome"},
		),
		gateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gate_decisions_total",
				Help:      "Budget creation admission decisions.",
			},
			[]string{"decision"},
		),
	}

	reg.MustRegister(
		m.webhookNotifications,
		m.gateDecisions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// WebhookNotification увеличивает счётчик обработанных уведомлений.
func (m *Metrics) WebhookNotification(outcome string) {
	if m == nil {
		return
	}
	m.webhookNotifications.WithLabelValues(sanitizeLabel(outcome)).Inc()
}

// GateDecision увеличивает счётчик решений гейта.
func (m *Metrics) GateDecision(decision string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(sanitizeLabel(decision)).Inc()
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

const maxLabelLen = 64

func sanitizeLabel(s string) string {
	if s == "" {
		return "unknown"
	}
	if len(s) > maxLabelLen {
		s = s[:maxLabelLen]
	}
	return s
}
