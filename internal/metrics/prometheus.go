package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proqure_evaluations_total",
			Help: "Supplier evaluations by outcome",
		},
		[]string{"status"},
	)

	ModelCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proqure_model_call_duration_seconds",
			Help:    "Model invocation duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	ModelTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proqure_model_tokens_total",
			Help: "Tokens consumed by model invocations",
		},
		[]string{"kind"},
	)

	ExtractionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proqure_extraction_failures_total",
			Help: "Report extraction failures by kind",
		},
		[]string{"kind"},
	)

	ReportsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "proqure_reports_created_total",
			Help: "Total persisted supplier reports",
		},
	)

	ActiveChatSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "proqure_active_chat_sessions",
			Help: "Currently live intake conversations",
		},
	)

	DashboardCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proqure_dashboard_cache_total",
			Help: "Dashboard aggregate cache lookups",
		},
		[]string{"result"},
	)
)

func Init() {
	prometheus.MustRegister(EvaluationsTotal)
	prometheus.MustRegister(ModelCallDuration)
	prometheus.MustRegister(ModelTokens)
	prometheus.MustRegister(ExtractionFailures)
	prometheus.MustRegister(ReportsCreated)
	prometheus.MustRegister(ActiveChatSessions)
	prometheus.MustRegister(DashboardCacheHits)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
