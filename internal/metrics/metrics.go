// Package metrics exposes Prometheus instrumentation for the moderation
// pipeline. Collectors are registered on the default registry; the server
// serves them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_reports_submitted_total",
		Help: "Reports accepted at intake, by classified severity.",
	}, []string{"severity"})

	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_decisions_total",
		Help: "Admin decisions enforced, by action taken.",
	}, []string{"action"})

	EnforcementFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_enforcement_failures_total",
		Help: "Enforcement sequence failures, by stage (ledger, account, content, status).",
	}, []string{"stage"})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_notifications_dropped_total",
		Help: "Notifications that failed to send and were absorbed.",
	})

	RepairsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_repairs_queued_total",
		Help: "Partial enforcement failures queued for reconciliation.",
	})
)
