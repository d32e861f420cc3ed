package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	GenerationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fixtures_generation_runs_total", Help: "Fixture generation runs by outcome"},
		[]string{"outcome"},
	)
	MatchesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fixtures_matches_created_total", Help: "Matches inserted by the scheduler"},
	)
	MatchesRenumbered = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fixtures_matches_renumbered_total", Help: "Second-leg matches moved by compaction"},
	)
	InvariantViolations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fixtures_invariant_violations_total", Help: "Runs rolled back because a pair exceeded the mode's meeting limit"},
	)
	GenerationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "fixtures_generation_seconds", Help: "Wall time of a generation run, lock wait included", Buckets: prometheus.DefBuckets},
	)
)

const (
	OutcomeGenerated = "generated"
	OutcomeBlocked   = "blocked"
	OutcomeError     = "error"
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(GenerationRuns, MatchesCreated, MatchesRenumbered, InvariantViolations, GenerationSeconds)
}
