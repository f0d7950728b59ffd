// Package metrics exposes Prometheus metrics for connector syncs.
//
// # Basic Usage
//
//	collector := metrics.NewCollector("salesforce")
//	timer := metrics.NewTimer()
//	resp, err := do(req)
//	collector.ObserveRequest("query", resp.StatusCode, timer.Stop())
//	collector.DocumentEmitted("account")
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kibana_connectors"

var (
	// RequestsTotal counts HTTP requests issued to remote APIs.
	// Labels: connector, endpoint (token/query/describe/download/ping), status (HTTP code or "error")
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of remote API requests",
		},
		[]string{"connector", "endpoint", "status"},
	)

	// RequestDuration tracks the latency of remote API requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Remote API request latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"connector", "endpoint"},
	)

	// RetriesTotal counts retried attempts by failure class.
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Total number of retried remote operations",
		},
		[]string{"connector", "reason"},
	)

	// TokenFetches counts access token requests by result.
	TokenFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_fetches_total",
			Help:      "Total number of OAuth token requests",
		},
		[]string{"connector", "result"},
	)

	// DocumentsEmitted counts normalized documents by type tag.
	DocumentsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_emitted_total",
			Help:      "Total number of documents emitted",
		},
		[]string{"connector", "type"},
	)

	// AttachmentDownloads counts attachment fetches by result (ok/not_found/skipped/error).
	AttachmentDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_downloads_total",
			Help:      "Total number of attachment downloads",
		},
		[]string{"connector", "result"},
	)

	// SyncDuration tracks full sync pass durations by outcome.
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of a full sync pass in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		},
		[]string{"connector", "outcome"},
	)
)

// Collector binds the metric vectors to one connector name.
type Collector struct {
	name      string
	startTime time.Time
}

// NewCollector creates a new metrics collector for a connector.
func NewCollector(name string) *Collector {
	return &Collector{
		name:      name,
		startTime: time.Now(),
	}
}

// Name returns the connector label value.
func (c *Collector) Name() string {
	return c.name
}

// ObserveRequest records one request outcome. status <= 0 means a transport failure.
func (c *Collector) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	RequestsTotal.WithLabelValues(c.name, endpoint, label).Inc()
	RequestDuration.WithLabelValues(c.name, endpoint).Observe(elapsed.Seconds())
}

// Retry records a retried attempt.
func (c *Collector) Retry(reason string) {
	RetriesTotal.WithLabelValues(c.name, reason).Inc()
}

// TokenFetch records a token request result.
func (c *Collector) TokenFetch(result string) {
	TokenFetches.WithLabelValues(c.name, result).Inc()
}

// DocumentEmitted records one emitted document.
func (c *Collector) DocumentEmitted(docType string) {
	DocumentsEmitted.WithLabelValues(c.name, docType).Inc()
}

// AttachmentDownload records one attachment fetch result.
func (c *Collector) AttachmentDownload(result string) {
	AttachmentDownloads.WithLabelValues(c.name, result).Inc()
}

// SyncFinished records a completed sync pass.
func (c *Collector) SyncFinished(outcome string, elapsed time.Duration) {
	SyncDuration.WithLabelValues(c.name, outcome).Observe(elapsed.Seconds())
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures an operation duration.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed time since the timer started.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
