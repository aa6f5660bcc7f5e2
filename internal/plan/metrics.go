package plan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Composition metrics, registered on the default registry so embedding
// services that already serve promhttp pick them up without extra wiring.
var (
	passesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fabric_plan_passes_total",
		Help: "Reconciliation passes run, by outcome.",
	}, []string{"outcome"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fabric_plan_failures_total",
		Help: "Composition failures, by error reason.",
	}, []string{"reason"})

	bindingsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fabric_plan_bindings_emitted_total",
		Help: "Binding operations emitted across all plans.",
	})
)
