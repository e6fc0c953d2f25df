package snapkeep

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapkeep",
			Subsystem: "engine",
			Name:      "mutations_total",
			Help:      "Mutations by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	rollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapkeep",
			Subsystem: "engine",
			Name:      "rollbacks_total",
			Help:      "Optimistic mutations undone after a failed persist.",
		},
		[]string{"op"},
	)

	backfillLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapkeep",
			Subsystem: "backfill",
			Name:      "lookups_total",
			Help:      "Coordinate backfill lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

const (
	outcomeOK     = "ok"
	outcomeFailed = "failed"
)
