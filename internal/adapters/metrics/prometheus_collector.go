package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "fleetd"
	// Subsystem for daemon metrics
	subsystem = "daemon"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalCollector is the singleton container metrics collector,
	// set by SetGlobalCollector() when metrics are enabled.
	globalCollector MetricsRecorder
)

// MetricsRecorder is the interface the supervisor records container
// lifecycle events through, kept separate from the concrete collector so
// callers don't need the prometheus import.
type MetricsRecorder interface {
	RecordContainerCompletion(containerInfo ContainerInfo)
	RecordContainerRestart(containerInfo ContainerInfo)
	RecordContainerIteration(containerInfo ContainerInfo)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalCollector sets the global metrics collector
// This should be called after the collector is created and started
func SetGlobalCollector(collector MetricsRecorder) {
	globalCollector = collector
}

// RecordContainerCompletion records a container completion event globally
func RecordContainerCompletion(containerInfo ContainerInfo) {
	if globalCollector != nil {
		globalCollector.RecordContainerCompletion(containerInfo)
	}
}

// RecordContainerRestart records a container restart event globally
func RecordContainerRestart(containerInfo ContainerInfo) {
	if globalCollector != nil {
		globalCollector.RecordContainerRestart(containerInfo)
	}
}

// RecordContainerIteration records a container iteration completion globally
func RecordContainerIteration(containerInfo ContainerInfo) {
	if globalCollector != nil {
		globalCollector.RecordContainerIteration(containerInfo)
	}
}
