// Package metrics provides Prometheus metrics collection for filebank
// components.
//
// All metrics are optional: when InitRegistry has not been called the
// constructors return nil and components skip instrumentation entirely.
//
// Usage:
//
//	metrics.InitRegistry()
//	backend := s3.New(client, s3.Config{Metrics: metrics.NewS3Metrics()})
//	svc := vfs.NewService(store, backend, validator, vfs.Options{Metrics: metrics.NewServiceMetrics()})
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// namespace prefixes every metric name.
const namespace = "filebank"

var (
	// registry is written once by InitRegistry and read afterwards.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry with the Go
// runtime and process collectors. Subsequent calls are ignored.
func InitRegistry() {
	registryOnce.Do(func() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		registry = reg
	})
}

// GetRegistry returns the global registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// durationBuckets are shared by the operation histograms, in milliseconds.
var durationBuckets = []float64{
	1,     // 1ms - metadata lookups
	5,     // 5ms
	10,    // 10ms
	50,    // 50ms - small objects
	100,   // 100ms
	500,   // 500ms
	1000,  // 1s - medium objects
	5000,  // 5s - large uploads
	30000, // 30s - directory moves over many keys
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
