package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	BatchesEnqueued  = prometheus.NewCounter(prometheus.CounterOpts{Name: "cartera_batches_enqueued_total", Help: "Notification batches enqueued for dispatch"})
	BatchesCompleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "cartera_batches_completed_total", Help: "Notification batches processed successfully"})
	BatchesFailed    = prometheus.NewCounter(prometheus.CounterOpts{Name: "cartera_batches_failed_total", Help: "Notification batches that failed processing"})
	BatchesDeadLettered = prometheus.NewCounter(prometheus.CounterOpts{Name: "cartera_batches_dead_letter_total", Help: "Notification batches moved to the dead letter queue"})
	ClientsAssigned  = prometheus.NewCounter(prometheus.CounterOpts{Name: "cartera_clients_assigned_total", Help: "Clients matched to a notification threshold"})
	ClientsUnassigned = prometheus.NewCounter(prometheus.CounterOpts{Name: "cartera_clients_unassigned_total", Help: "Clients that matched no notification threshold"})
	AuditEventsApplied = prometheus.NewCounter(prometheus.CounterOpts{Name: "cartera_audit_events_applied_total", Help: "Audit events folded into execution stats"})
	WebhooksDelivered = prometheus.NewCounter(prometheus.CounterOpts{Name: "cartera_webhooks_delivered_total", Help: "Webhook notifications delivered"})
	WebhooksFailed   = prometheus.NewCounter(prometheus.CounterOpts{Name: "cartera_webhooks_failed_total", Help: "Webhook notifications that exhausted retries"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			BatchesEnqueued,
			BatchesCompleted,
			BatchesFailed,
			BatchesDeadLettered,
			ClientsAssigned,
			ClientsUnassigned,
			AuditEventsApplied,
			WebhooksDelivered,
			WebhooksFailed,
		)
	})
	return promhttp.Handler()
}
