// Package metrics defines and registers all custom Prometheus metrics for the
// interaction service. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "interaction"

// ── Event consumption metrics ─────────────────────────────────────────────────

// EventsConsumedTotal counts messages fetched from the inbound topics.
// Label:
//   - topic: the inbound topic the message came from
var EventsConsumedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_consumed_total",
		Help:      "Total number of messages fetched from the inbound topics.",
	},
	[]string{"topic"},
)

// EventsFailedTotal counts messages whose processing failed and were routed
// to the dead-letter topic.
var EventsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_failed_total",
		Help:      "Total number of messages that failed processing.",
	},
	[]string{"topic"},
)

// DeadLettersTotal counts messages successfully published to the dead-letter topic.
var DeadLettersTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dead_letters_total",
		Help:      "Total number of messages published to the dead-letter topic.",
	},
)

// BrokerConnectRetriesTotal counts reconnect attempts made by the consumer supervisor.
var BrokerConnectRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broker_connect_retries_total",
		Help:      "Total number of broker reconnect attempts.",
	},
)

// EventProcessingDuration measures how long one message takes from fetch to
// applied mutation.
var EventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_processing_duration_seconds",
		Help:      "Duration of message processing from fetch to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"topic"},
)

// ── Moderation metrics ────────────────────────────────────────────────────────

// ReportsCreatedTotal counts successfully filed moderation reports.
// Label:
//   - kind: "comment", "rating", or "playlist"
var ReportsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_created_total",
		Help:      "Total number of moderation reports created, by target kind.",
	},
	[]string{"kind"},
)

// ReportsRejectedTotal counts report submissions rejected by an invariant.
// Label:
//   - reason: "not_found", "conflict", or "unprocessable"
var ReportsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_rejected_total",
		Help:      "Total number of report submissions rejected by a moderation invariant.",
	},
	[]string{"reason"},
)
