// Package metrics defines and registers all custom Prometheus metrics for the
// care matching service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto; the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "careneighbour"

// ── Request lifecycle metrics ────────────────────────────────────────────────

// CareRequestsCreatedTotal counts newly opened care requests.
// Label:
//   - replay: "true" when an Idempotency-Key returned an existing request
var CareRequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "care_requests_created_total",
		Help:      "Total number of care requests created.",
	},
	[]string{"replay"},
)

// CareRequestTransitionsTotal counts successful lifecycle transitions.
// Label:
//   - to: the status the request entered (e.g. "MATCHED")
var CareRequestTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "care_request_transitions_total",
		Help:      "Total number of care request status transitions.",
	},
	[]string{"to"},
)

// CareRequestErrorsTotal counts lifecycle operations rejected by the core.
// Labels:
//   - op: "create", "match", "respond", "cancel", "complete", "edit"
//   - reason: "validation", "not_found", "forbidden", "invalid_state", "conflict", "internal"
var CareRequestErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "care_request_errors_total",
		Help:      "Total number of rejected care request operations.",
	},
	[]string{"op", "reason"},
)

// ── Realtime metrics ─────────────────────────────────────────────────────────

// ActiveConnections tracks the number of users with a live websocket.
var ActiveConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_active_connections",
		Help:      "Current number of users with a registered websocket connection.",
	},
)

// NotificationsTotal counts outbound notification attempts.
// Labels:
//   - type: event type ("new-request", "request-response", "caregiver-location")
//   - result: "delivered", "offline" (no handle) or "dropped" (handle not writable)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications, labelled by event type and outcome.",
	},
	[]string{"type", "result"},
)

// FanoutPublishErrorsTotal counts failed Redis publishes.
var FanoutPublishErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fanout_publish_errors_total",
		Help:      "Total number of notifications that could not be published to Redis.",
	},
)

// FanoutSubscribed is 1 while this instance holds its Redis subscription.
var FanoutSubscribed = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fanout_subscribed",
		Help:      "Whether the notification fan-out subscription is live (1) or not (0).",
	},
)

// ── Provider signal metrics ──────────────────────────────────────────────────

// ProviderSignalsTotal counts inbound provider frames handled by the dispatcher.
// Labels:
//   - kind: "location" or "status"
//   - result: "processed", "failed" or "dropped" (queue full)
var ProviderSignalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_signals_total",
		Help:      "Total number of provider location/status signals, by outcome.",
	},
	[]string{"kind", "result"},
)

// DispatcherQueueDepth tracks the current number of signals waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var DispatcherQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dispatcher_queue_depth",
		Help:      "Current number of signals pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// SignalProcessingDuration measures how long one provider signal takes to apply.
// Label:
//   - kind: "location" or "status"
var SignalProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "signal_processing_duration_seconds",
		Help:      "Duration of provider signal processing from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
