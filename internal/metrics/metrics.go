// Package metrics holds the Prometheus collectors exposed on /metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usercontent",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "usercontent",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usercontent",
			Name:      "uploads_total",
			Help:      "Total file uploads by outcome",
		},
		[]string{"status"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "usercontent",
			Name:      "upload_bytes_total",
			Help:      "Total bytes of successfully stored uploads",
		},
	)

	DeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usercontent",
			Name:      "deletions_total",
			Help:      "Total blob deletions by outcome",
		},
		[]string{"status"},
	)

	BackgroundTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usercontent",
			Name:      "background_tasks_total",
			Help:      "Total fire-and-forget tasks by name and outcome",
		},
		[]string{"task", "status"},
	)
)

func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records the outcome of an upload. Bytes are only counted for stored files
func RecordUpload(status string, bytes int64) {
	UploadsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		UploadBytesTotal.Add(float64(bytes))
	}
}

func RecordDeletion(status string) {
	DeletionsTotal.WithLabelValues(status).Inc()
}

func RecordTask(task, status string) {
	BackgroundTasksTotal.WithLabelValues(task, status).Inc()
}
