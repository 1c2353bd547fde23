package transition

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeCommitted = "committed"
	OutcomeForbidden = "forbidden"
	OutcomeRejected  = "rejected"
	OutcomeInvalid   = "invalid"
	OutcomeConflict  = "conflict"
	OutcomeFailed    = "failed"
)

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "creativehub_project_transitions_total",
	Help: "Total number of project transition attempts by transition and outcome",
}, []string{"transition", "outcome"})

func observe(transition, outcome string) {
	transitionsTotal.WithLabelValues(transition, outcome).Inc()
}
