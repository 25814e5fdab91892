// Package metrics provides Prometheus metrics for the document center service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_center_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "document_center_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Remote store metrics
	driveOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "document_center_drive_operation_duration_seconds",
			Help:    "Remote store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	driveOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_center_drive_operations_total",
			Help: "Total remote store operations",
		},
		[]string{"operation", "status"},
	)

	driveBytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "document_center_drive_bytes_uploaded_total",
			Help: "Total bytes uploaded to the remote store",
		},
	)

	driveBytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "document_center_drive_bytes_downloaded_total",
			Help: "Total bytes downloaded or exported from the remote store",
		},
	)

	// Document metrics
	documentsUploadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_center_documents_uploaded_total",
			Help: "Total documents filed, by category",
		},
		[]string{"category"},
	)

	documentsDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_center_documents_deleted_total",
			Help: "Total document deletions, by outcome",
		},
		[]string{"status"},
	)

	// Web cache metrics
	webCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_center_web_cache_lookups_total",
			Help: "Web cache lookups by result (hit, miss, denied, error)",
		},
		[]string{"result"},
	)

	webFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "document_center_web_fetch_duration_seconds",
			Help:    "Duration of outbound page fetches on cache miss",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Table store metrics
	tableQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "document_center_table_query_duration_seconds",
			Help:    "Table store query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDriveOperation records a remote store call.
func RecordDriveOperation(operation string, duration time.Duration, success bool) {
	driveOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	driveOperationsTotal.WithLabelValues(operation, status(success)).Inc()
}

func RecordDriveUpload(bytes int64) {
	driveBytesUploaded.Add(float64(bytes))
}

func RecordDriveDownload(bytes int64) {
	driveBytesDownloaded.Add(float64(bytes))
}

// RecordDocumentUpload records a filed document under its resolved category.
func RecordDocumentUpload(category string) {
	documentsUploadedTotal.WithLabelValues(category).Inc()
}

func RecordDocumentDelete(success bool) {
	documentsDeletedTotal.WithLabelValues(status(success)).Inc()
}

// Web cache lookup results.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheDenied = "denied"
	CacheError  = "error"
)

// RecordCacheLookup records the outcome of a web cache request.
func RecordCacheLookup(result string) {
	webCacheLookupsTotal.WithLabelValues(result).Inc()
}

func RecordWebFetch(duration time.Duration) {
	webFetchDuration.Observe(duration.Seconds())
}

// RecordTableQuery records a table store query duration.
func RecordTableQuery(query string, duration time.Duration) {
	tableQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics. Requests
// are labeled by their matched route pattern to bound label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
	})
}
