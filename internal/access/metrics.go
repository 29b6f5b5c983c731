// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package access

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for access decisions.
var (
	// decideDuration tracks the latency of Decide() calls.
	decideDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inkwell_access_decide_duration_seconds",
		Help:    "Histogram of access decision latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// decisions counts decisions by resource type, action, and verdict.
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_access_decisions_total",
		Help: "Total number of access decisions",
	}, []string{"resource_type", "action", "verdict"})
)

// recordDecision records metrics for a completed decision.
func recordDecision(duration time.Duration, typ ResourceType, action Action, verdict Verdict) {
	decideDuration.Observe(duration.Seconds())
	decisions.WithLabelValues(string(typ), string(action), verdict.String()).Inc()
}
