package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики процесса review. Экспортируются на /metrics endpoint
// процессора (см. cmd/critiquely-processor).
var (
	// ReviewsTotal — количество завершённых review по статусам.
	ReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "critiquely_reviews_total",
		Help: "Total review runs by terminal status",
	}, []string{"status"})

	// ReviewDuration — длительность review от получения задачи до завершения.
	ReviewDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "critiquely_review_duration_seconds",
		Help:    "Duration of review runs in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	// LLMCallsTotal — количество обращений к модели.
	LLMCallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "critiquely_llm_calls_total",
		Help: "Total LLM API calls",
	})

	// ToolCallsTotal — количество выполненных tool-вызовов по именам.
	ToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "critiquely_tool_calls_total",
		Help: "Total tool invocations by tool name",
	}, []string{"tool"})
)
