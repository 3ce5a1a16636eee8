package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PairsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_pairs_scored_total",
			Help: "Total number of (opening, builder) pairs scored",
		},
		[]string{"result"}, // passed, filtered, failed
	)

	CandidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_candidates_skipped_total",
			Help: "Candidates skipped during batch generation due to scoring errors",
		},
		[]string{"direction"}, // for_opening, for_builder
	)

	MatchesUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_matches_upserted_total",
			Help: "Match rows written by the sweep",
		},
		[]string{"outcome"}, // created, updated
	)

	ActionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_actions_recorded_total",
			Help: "Swipe actions recorded on matches",
		},
		[]string{"action"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_scoring_duration_seconds",
			Help: "Duration of batch candidate scoring",
		},
		[]string{"direction"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "engine_sweep_duration_seconds",
			Help: "Duration of full nightly sweeps",
		},
	)

	SweepOpenings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_sweep_openings_total",
			Help: "Openings processed by the nightly sweep",
		},
		[]string{"status"}, // ok, failed
	)
)
