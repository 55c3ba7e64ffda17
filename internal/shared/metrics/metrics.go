package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DocumentsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "dealflow", Name: "pipeline_documents_started_total", Help: "Documents whose pipeline run started."},
	)
	DocumentsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "dealflow", Name: "pipeline_documents_completed_total", Help: "Documents that reached completed."},
	)
	DocumentsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "dealflow", Name: "pipeline_documents_failed_total", Help: "Documents that reached failed."},
	)
	DocumentsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "dealflow", Name: "pipeline_documents_cancelled_total", Help: "Documents cancelled while in flight."},
	)
	StageRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dealflow", Name: "pipeline_stage_retries_total", Help: "Retries per pipeline stage."},
		[]string{"stage"},
	)
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dealflow",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)
	ModelCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dealflow", Name: "model_calls_total", Help: "Model backend calls by backend and outcome."},
		[]string{"backend", "outcome"},
	)
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "dealflow", Name: "scheduler_queue_depth", Help: "Jobs waiting in the scheduler queue."},
	)
	WorkersBusy = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "dealflow", Name: "scheduler_workers_busy", Help: "Workers currently running a job."},
	)
	EvaluationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dealflow", Name: "evaluations_created_total", Help: "Evaluations persisted, by scoring mode."},
		[]string{"mode"},
	)
)

// RegisterCollectors registers all pipeline collectors on the given registerer.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		DocumentsStarted,
		DocumentsCompleted,
		DocumentsFailed,
		DocumentsCancelled,
		StageRetries,
		StageDuration,
		ModelCalls,
		QueueDepth,
		WorkersBusy,
		EvaluationsCreated,
	)
}

// Handler exposes the default registry in Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
