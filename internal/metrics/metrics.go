package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OutcomeOK labels a script run that finished without error.
const OutcomeOK = "ok"

var (
	scriptExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyoa_script_executions_total",
			Help: "Total number of node script executions by outcome.",
		},
		[]string{"outcome"},
	)

	scriptExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cyoa_script_execution_duration_seconds",
		Help:    "Wall-clock duration of node script executions.",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2, 5},
	})

	projectOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyoa_project_operations_total",
			Help: "Total number of project load/save operations by operation and status.",
		},
		[]string{"operation", "status"},
	)
)

// ObserveScriptExecution records one script run. outcome is OutcomeOK or a failure kind.
func ObserveScriptExecution(outcome string, elapsed time.Duration) {
	scriptExecutionsTotal.WithLabelValues(outcome).Inc()
	scriptExecutionDuration.Observe(elapsed.Seconds())
}

// IncProjectOperation counts a project store operation.
func IncProjectOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	projectOperationsTotal.WithLabelValues(operation, status).Inc()
}
