// Package metrics provides the MetricsCollector interface for aggregating metrics.
// This is a molecule that composes the atom-level types from types.go.
package metrics

// MetricsCollector defines the interface for collecting studio metrics.
// This molecule aggregates TaskRecord atoms and export counts into a unified
// collection surface.
//
// Implementation strategy:
// - Methods should be concurrency-safe
// - Zero values should be returned for unavailable metrics
type MetricsCollector interface {
	// RecordTask logs a completed task execution.
	// Aggregates TaskRecord atoms into the metrics system.
	RecordTask(task TaskRecord)

	// RecordExport counts one served PNG export.
	RecordExport()

	// GetTaskMetrics returns aggregated operation statistics.
	// Composes multiple TaskRecord atoms into a TaskMetrics summary.
	GetTaskMetrics() TaskMetrics

	// GetRecentTasks returns the N most recent task records.
	// Provides access to individual TaskRecord atoms.
	GetRecentTasks(limit int) []TaskRecord

	// GetSystemStatus returns the overall service health status.
	// Composes the SystemStatus atom from collected metrics.
	GetSystemStatus() SystemStatus
}
