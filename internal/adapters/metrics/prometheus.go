// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jobrunner/meridian/internal/ports/output"
)

var _ output.MetricsCollector = (*Collector)(nil)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	registry            *prometheus.Registry
	transformCounter    *prometheus.CounterVec
	transformDuration   *prometheus.HistogramVec
	transformedPoints   *prometheus.CounterVec
	operationCache      *prometheus.CounterVec
	catalogsLoaded      prometheus.Gauge
	catalogsReady       prometheus.Gauge
	definitionsLoaded   prometheus.Gauge
	storageOperations   *prometheus.CounterVec
	storageDuration     *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, which also
// carries the Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "meridian"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		transformCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transforms_total",
				Help:      "Total number of transform requests",
			},
			[]string{"source", "target", "status"},
		),

		transformDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transform_duration_seconds",
				Help:      "Transform request duration in seconds",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"source", "target"},
		),

		transformedPoints: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transformed_points_total",
				Help:      "Total number of transformed points",
			},
			[]string{"result"},
		),

		operationCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_cache_lookups_total",
				Help:      "Compiled operation cache lookups",
			},
			[]string{"result"},
		),

		catalogsLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalogs_loaded",
				Help:      "Number of registered CRS catalogs",
			},
		),

		catalogsReady: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalogs_ready",
				Help:      "Number of ready CRS catalogs",
			},
		),

		definitionsLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "definitions_loaded",
				Help:      "Number of resolvable CRS definitions",
			},
		),

		storageOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Total number of storage operations",
			},
			[]string{"operation", "status"},
		),

		storageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_duration_seconds",
				Help:      "Storage operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// refLabel keeps CRS labels bounded: inline WKT collapses to "wkt".
func refLabel(ref string) string {
	if strings.ContainsAny(ref, "[(") {
		return "wkt"
	}
	return strings.ToUpper(ref)
}

// IncTransformCount increments the transform counter.
func (c *Collector) IncTransformCount(source, target string, success bool) {
	c.transformCounter.WithLabelValues(refLabel(source), refLabel(target), status(success)).Inc()
}

// ObserveTransformDuration records transform duration.
func (c *Collector) ObserveTransformDuration(source, target string, duration time.Duration) {
	c.transformDuration.WithLabelValues(refLabel(source), refLabel(target)).Observe(duration.Seconds())
}

// AddTransformedPoints counts defined and undefined output points.
func (c *Collector) AddTransformedPoints(defined, undefined int) {
	c.transformedPoints.WithLabelValues("defined").Add(float64(defined))
	c.transformedPoints.WithLabelValues("undefined").Add(float64(undefined))
}

// IncOperationCache counts an operation cache lookup.
func (c *Collector) IncOperationCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.operationCache.WithLabelValues(result).Inc()
}

// SetCatalogsLoaded sets the number of registered catalogs.
func (c *Collector) SetCatalogsLoaded(count int) {
	c.catalogsLoaded.Set(float64(count))
}

// SetCatalogsReady sets the number of ready catalogs.
func (c *Collector) SetCatalogsReady(count int) {
	c.catalogsReady.Set(float64(count))
}

// SetDefinitionsLoaded sets the number of resolvable definitions.
func (c *Collector) SetDefinitionsLoaded(count int) {
	c.definitionsLoaded.Set(float64(count))
}

// IncStorageOperations increments storage operation counter.
func (c *Collector) IncStorageOperations(operation string, success bool) {
	c.storageOperations.WithLabelValues(operation, status(success)).Inc()
}

// ObserveStorageDuration records storage operation duration.
func (c *Collector) ObserveStorageDuration(operation string, duration time.Duration) {
	c.storageDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler returns the HTTP handler exposing this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Middleware returns HTTP middleware for metrics collection. It labels
// requests with the matched route template, so /api/v1/crs/{key} is one
// series however many keys are requested.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		path := routePath(r)
		c.httpRequestsTotal.WithLabelValues(r.Method, path, statusClass(wrapped.statusCode)).Inc()
		c.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// routePath returns the route template for r, or "other" for requests no
// route matched.
func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "other"
}

// statusClass converts an HTTP status code to its class, e.g. "4xx".
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
