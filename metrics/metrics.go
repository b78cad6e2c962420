package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP метрики
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculator_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calculator_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Метрики калькулятора
	CalculatorEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculator_evaluations_total",
			Help: "Total number of evaluate commands",
		},
		[]string{"result"}, // success, error
	)

	CalculatorMemoryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculator_memory_operations_total",
			Help: "Total number of memory stack operations",
		},
		[]string{"op", "applied"},
	)

	CalculatorMemoryDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calculator_memory_depth",
			Help: "Memory stack depth of the last mutated session",
		},
	)

	CalculatorHistorySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calculator_history_size",
			Help: "History size of the last mutated session",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calculator_active_sessions",
			Help: "Number of live calculator sessions",
		},
	)

	ActiveWebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calculator_websocket_connections",
			Help: "Number of open websocket state streams",
		},
	)
)

// UpdateCalculatorMetrics - обновление метрик калькулятора
func UpdateCalculatorMetrics(memoryDepth, historySize int) {
	CalculatorMemoryDepth.Set(float64(memoryDepth))
	CalculatorHistorySize.Set(float64(historySize))
}

// ObserveEvaluation - учёт результата команды "="
func ObserveEvaluation(ok bool) {
	if ok {
		CalculatorEvaluations.WithLabelValues("success").Inc()
		return
	}
	CalculatorEvaluations.WithLabelValues("error").Inc()
}

// ObserveMemory - учёт операции со стеком памяти
func ObserveMemory(op string, applied bool) {
	label := "false"
	if applied {
		label = "true"
	}
	CalculatorMemoryOperations.WithLabelValues(op, label).Inc()
}
