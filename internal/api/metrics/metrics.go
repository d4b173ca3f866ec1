// Package metrics defines and registers all custom Prometheus metrics for
// the canteen API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "canteen"

// ── Checkout metrics ──────────────────────────────────────────────────────────

// CheckoutsTotal counts checkout attempts by outcome.
// Label:
//   - result: "success", "insufficient_balance", "invalid", "not_found",
//     "duplicate", or "error"
var CheckoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Total number of checkout attempts, by result.",
	},
	[]string{"result"},
)

// CheckoutAmountPoints observes the total charged per committed checkout.
var CheckoutAmountPoints = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_amount_points",
		Help:      "Points debited per committed checkout.",
		Buckets:   []float64{5, 10, 20, 50, 100, 200, 500},
	},
)

// CheckoutDuration measures a committed checkout end-to-end, from request
// validation to ledger commit.
var CheckoutDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_duration_seconds",
		Help:      "Duration of committed checkouts from validation to commit.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Credit metrics ────────────────────────────────────────────────────────────

// CreditsTotal counts committed credit operations.
// Label:
//   - kind: "balance" or "subscription"
var CreditsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_total",
		Help:      "Total number of committed credit operations, by kind.",
	},
	[]string{"kind"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts receipt deliveries.
// Labels:
//   - kind: "purchase" or "balance_update"
//   - result: "sent" or "error"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of receipt email deliveries, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationQueueDepth tracks the number of receipts waiting in each
// delivery worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of receipts pending in each delivery worker channel.",
	},
	[]string{"worker_id"},
)
