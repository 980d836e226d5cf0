package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricCatastroAge = "catastro.data_age_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricAnalyses = "business.shadow_analyses"
	MetricReports  = "business.solar_reports"
)
