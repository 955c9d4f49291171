package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	GithubAPICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "github_api_call_duration_seconds",
			Help:    "GitHub API call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"status"},
	)

	RiskScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risk_scan_duration_seconds",
			Help:    "Full risk scan duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~100s
		},
	)

	ScanVerdictCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_scan_verdict_count",
			Help: "Total risk verdicts produced, by verdict",
		},
		[]string{"verdict"}, // too_new, active, at_risk
	)

	ActivityLogCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_log_count",
			Help: "Total activity log entries appended, by source",
		},
		[]string{"source"}, // discord, github, manual
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordGithubAPICall(status string, duration time.Duration) {
	GithubAPICallDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func RecordRiskScanDuration(duration time.Duration) {
	RiskScanDuration.Observe(duration.Seconds())
}

func IncrementScanVerdict(verdict string) {
	ScanVerdictCount.WithLabelValues(verdict).Inc()
}

func IncrementActivityLog(source string) {
	ActivityLogCount.WithLabelValues(source).Inc()
}

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}
