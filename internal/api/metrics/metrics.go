// Package metrics defines and registers all custom Prometheus metrics for the
// buch catalog API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry on
// package initialisation (promauto).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "buch"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "rejected", "throttled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthFailuresTotal counts rejected bearer tokens.
// Label:
//   - reason: the validation stage that failed (e.g. "token_expired", "signature_invalid")
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected Authorization headers, by reason.",
	},
	[]string{"reason"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// BuecherCreatedTotal counts newly created buecher.
// Label:
//   - kind: "KINDLE" or "PRINT"
var BuecherCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "buecher_created_total",
		Help:      "Total number of buecher created, by kind.",
	},
	[]string{"kind"},
)

// UpdateConflictsTotal counts updates rejected by the optimistic version check.
var UpdateConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "update_conflicts_total",
		Help:      "Total number of updates rejected because no buch matched id and version.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts creation notifications.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of creation notifications, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of creation events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDuration measures how long a single notification takes end-to-end.
var NotificationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of notification processing from dequeue to delivery.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)
