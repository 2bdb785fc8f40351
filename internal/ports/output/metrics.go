package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncTransformCount increments the transform request counter.
	IncTransformCount(source, target string, success bool)

	// ObserveTransformDuration records transform request duration.
	ObserveTransformDuration(source, target string, duration time.Duration)

	// AddTransformedPoints counts converted points, split into defined and undefined.
	AddTransformedPoints(defined, undefined int)

	// IncOperationCache counts compiled-operation cache lookups.
	IncOperationCache(hit bool)

	// SetCatalogsLoaded sets the number of registered catalogs.
	SetCatalogsLoaded(count int)

	// SetCatalogsReady sets the number of ready catalogs.
	SetCatalogsReady(count int)

	// SetDefinitionsLoaded sets the number of resolvable definitions.
	SetDefinitionsLoaded(count int)

	// IncStorageOperations increments storage operation counter.
	IncStorageOperations(operation string, success bool)

	// ObserveStorageDuration records storage operation duration.
	ObserveStorageDuration(operation string, duration time.Duration)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncTransformCount implements MetricsCollector.
func (n *NoOpMetrics) IncTransformCount(_, _ string, _ bool) {}

// ObserveTransformDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveTransformDuration(_, _ string, _ time.Duration) {}

// AddTransformedPoints implements MetricsCollector.
func (n *NoOpMetrics) AddTransformedPoints(_, _ int) {}

// IncOperationCache implements MetricsCollector.
func (n *NoOpMetrics) IncOperationCache(_ bool) {}

// SetCatalogsLoaded implements MetricsCollector.
func (n *NoOpMetrics) SetCatalogsLoaded(_ int) {}

// SetCatalogsReady implements MetricsCollector.
func (n *NoOpMetrics) SetCatalogsReady(_ int) {}

// SetDefinitionsLoaded implements MetricsCollector.
func (n *NoOpMetrics) SetDefinitionsLoaded(_ int) {}

// IncStorageOperations implements MetricsCollector.
func (n *NoOpMetrics) IncStorageOperations(_ string, _ bool) {}

// ObserveStorageDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}
