// Package tracking instruments the resilient HTTP client with
// OpenTelemetry metrics. Instruments are created against the global meter
// provider; exporter wiring is the host application's concern.
package tracking

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// Meter name for HTTP client metrics instrumentation
	meterName = "httpkit/httpclient"

	// Metric names following OpenTelemetry semantic conventions
	metricRequestDuration   = "http.client.request.duration"      // Histogram in seconds
	metricRetries           = "httpkit.client.retries"            // Counter
	metricAdmissionRejected = "httpkit.client.admission_rejected" // Counter

	// Attribute keys
	attrHTTPRequestMethod  = "http.request.method"
	attrHTTPResponseStatus = "http.response.status_code"
	attrEndpoint           = "httpkit.endpoint"
	attrCategory           = "httpkit.failure_category"
)

// HTTP client request duration histogram buckets, matching the OTel
// recommended boundaries for HTTP latency measurement.
var durationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10,
}

var (
	meterOnce sync.Once

	durationHistogram        metric.Float64Histogram
	retriesCounter           metric.Int64Counter
	admissionRejectedCounter metric.Int64Counter
)

// logMetricError logs a metric initialization error to stderr. Metrics are
// best-effort and must not break the client.
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize HTTP client metric %s: %v\n", metricName, err)
	}
}

// initMeter initializes the meter and instruments once.
func initMeter() {
	meterOnce.Do(func() {
		meter := otel.Meter(meterName)

		var err error
		durationHistogram, err = meter.Float64Histogram(
			metricRequestDuration,
			metric.WithDescription("Duration of HTTP client requests"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(durationBuckets...),
		)
		logMetricError(metricRequestDuration, err)

		retriesCounter, err = meter.Int64Counter(
			metricRetries,
			metric.WithDescription("Number of retry attempts issued by the orchestrator"),
		)
		logMetricError(metricRetries, err)

		admissionRejectedCounter, err = meter.Int64Counter(
			metricAdmissionRejected,
			metric.WithDescription("Requests rejected by the local admission gate"),
		)
		logMetricError(metricAdmissionRejected, err)
	})
}

// RecordRequest records the duration and final status of a completed call.
func RecordRequest(ctx context.Context, method, endpoint string, status int, elapsed time.Duration) {
	initMeter()
	if durationHistogram == nil {
		return
	}
	durationHistogram.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String(attrHTTPRequestMethod, method),
		attribute.String(attrEndpoint, endpoint),
		attribute.Int(attrHTTPResponseStatus, status),
	))
}

// RecordRetry counts one retry decision for the given failure category.
func RecordRetry(ctx context.Context, category string) {
	initMeter()
	if retriesCounter == nil {
		return
	}
	retriesCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrCategory, category),
	))
}

// RecordAdmissionRejected counts one local admission rejection.
func RecordAdmissionRejected(ctx context.Context, endpoint string) {
	initMeter()
	if admissionRejectedCounter == nil {
		return
	}
	admissionRejectedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrEndpoint, endpoint),
	))
}
