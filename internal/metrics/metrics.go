package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation outcomes.
const (
	OutcomePlan     = "plan"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

var (
	PlanGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gastroguide_plan_generations_total",
			Help: "Total number of meal plan generations by outcome",
		},
		[]string{"outcome"},
	)

	PlanGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gastroguide_plan_generation_duration_seconds",
			Help:    "Duration of the text-generation call in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"outcome"},
	)

	ProfileRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gastroguide_profile_rejections_total",
			Help: "Total number of form submissions rejected by field",
		},
		[]string{"field"},
	)

	GenerationTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gastroguide_generation_tokens_total",
			Help: "Tokens reported by the text-generation service",
		},
		[]string{"direction"},
	)
)
