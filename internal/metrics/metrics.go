// Package metrics exposes prometheus counters for the tagging workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TagsTotal counts user tag decisions by label.
	TagsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catmon_tags_total",
		Help: "Images tagged by users, partitioned by label.",
	}, []string{"label"})

	// AutoDiscardsTotal counts images rejected by the darkness filter and
	// moved to the auto-discard folder.
	AutoDiscardsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catmon_auto_discards_total",
		Help: "Images auto-discarded as too dark.",
	})

	// UndosTotal counts undo operations.
	UndosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catmon_undos_total",
		Help: "Tag decisions undone by users.",
	})

	// StorageErrors counts failed object store calls by operation.
	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catmon_storage_errors_total",
		Help: "Object store failures, partitioned by operation.",
	}, []string{"op"})

	// SessionsTotal counts tagging sessions created.
	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catmon_sessions_total",
		Help: "Tagging sessions created.",
	})
)
