// Package metrics provides pure data types for the studio metrics system.
// This file contains atom-level type definitions with no behavior.
package metrics

import "time"

// TaskRecord represents a single operation execution record.
// This is a pure data structure for tracking individual studio operations.
type TaskRecord struct {
	// ID is the unique identifier for this task
	ID string `json:"id"`

	// Type identifies the kind of task (e.g., "load", "captions", "edit", "analyze")
	Type string `json:"type"`

	// SessionID identifies which studio session this task belongs to
	SessionID string `json:"session_id"`

	// Status indicates the current state: "success", "error", "processing"
	Status string `json:"status"`

	// StartTime is when the task began execution
	StartTime time.Time `json:"start_time"`

	// EndTime is when the task completed (zero value if still processing)
	EndTime time.Time `json:"end_time,omitempty"`

	// Duration is the total execution time
	Duration time.Duration `json:"duration"`

	// ErrorMsg contains error details if Status is "error"
	ErrorMsg string `json:"error_msg,omitempty"`
}

// SystemStatus represents the overall service health and status.
// This is a pure data structure with no behavior.
type SystemStatus struct {
	// Health indicates the service state: "running", "error", "stopped"
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// Provider names the active AI backend ("gemini" or "openai")
	Provider string `json:"provider"`

	// Uptime is the duration since the application started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of the last status read
	LastCheck time.Time `json:"last_check"`
}

// TaskMetrics represents aggregated operation statistics.
// This is a pure data structure with no behavior.
type TaskMetrics struct {
	// TotalProcessed is the total number of tasks processed
	TotalProcessed int64 `json:"total_processed"`

	// TotalSuccess is the count of successfully completed tasks
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the count of failed tasks
	TotalErrors int64 `json:"total_errors"`

	// TotalExports is the count of PNG exports served
	TotalExports int64 `json:"total_exports"`

	// ByType contains per-type statistics
	ByType map[string]*TaskTypeMetrics `json:"by_type"`
}

// TaskTypeMetrics represents statistics for a specific task type.
// This is a pure data structure with no behavior.
type TaskTypeMetrics struct {
	// Count is the total number of tasks of this type
	Count int64 `json:"count"`

	// SuccessRate is the percentage of successful operations (0-100)
	SuccessRate float64 `json:"success_rate"`

	// AvgDuration is the average execution time for this task type
	AvgDuration time.Duration `json:"avg_duration"`
}

// Status constants for TaskRecord
const (
	TaskStatusSuccess    = "success"
	TaskStatusError      = "error"
	TaskStatusProcessing = "processing"
)

// Health constants for SystemStatus
const (
	SystemHealthRunning = "running"
	SystemHealthError   = "error"
	SystemHealthStopped = "stopped"
)

// Task type constants, matching the session operation kinds.
const (
	TaskTypeLoad     = "load"
	TaskTypeCaptions = "captions"
	TaskTypeEdit     = "edit"
	TaskTypeAnalyze  = "analyze"
)
