// Package metrics provides the MetricsStore organism for in-memory metrics storage.
// This file contains the MetricsStore which implements the MetricsCollector interface.
package metrics

import (
	"sync"
	"time"
)

// MetricsStore is an in-memory storage organism for all studio metrics.
// It implements the MetricsCollector interface and provides thread-safe
// access to task records, aggregated statistics, and service health.
//
// Task history is kept in a fixed-capacity ring so memory stays bounded no
// matter how long the service runs.
//
// Usage:
//
//	store := NewMetricsStore(DefaultStoreConfig(), time.Now())
//	store.RecordTask(task)
//	metrics := store.GetTaskMetrics()
type MetricsStore struct {
	mu sync.RWMutex

	// Task tracking
	taskHistory []TaskRecord // Circular buffer of recent tasks
	taskCap     int          // Maximum tasks to retain
	taskHead    int          // Write index
	taskSize    int          // Current number of tasks

	// Task aggregation
	totalTasks   int64
	totalSuccess int64
	totalErrors  int64
	totalExports int64
	taskByType   map[string]*taskTypeStats // Per-type statistics

	// System metadata
	startTime time.Time
	version   string
	provider  string
}

// taskTypeStats holds per-type aggregation data
type taskTypeStats struct {
	count         int64
	successCount  int64
	totalDuration time.Duration
}

// StoreConfig configures the MetricsStore behavior.
type StoreConfig struct {
	// TaskHistoryCapacity is the max number of tasks to retain in history
	TaskHistoryCapacity int
	// Version is the application version string
	Version string
	// Provider names the active AI backend
	Provider string
}

// DefaultStoreConfig returns a default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		TaskHistoryCapacity: 100,
		Version:             "0.0.0",
	}
}

// NewMetricsStore creates a new MetricsStore with the specified configuration.
// The startTime is used to calculate uptime.
func NewMetricsStore(config StoreConfig, startTime time.Time) *MetricsStore {
	cap := config.TaskHistoryCapacity
	if cap < 1 {
		cap = 100
	}

	return &MetricsStore{
		taskHistory: make([]TaskRecord, cap),
		taskCap:     cap,
		taskByType:  make(map[string]*taskTypeStats),
		startTime:   startTime,
		version:     config.Version,
		provider:    config.Provider,
	}
}

// RecordTask logs a completed task execution.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) RecordTask(task TaskRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Add to circular buffer
	s.taskHistory[s.taskHead] = task
	s.taskHead = (s.taskHead + 1) % s.taskCap
	if s.taskSize < s.taskCap {
		s.taskSize++
	}

	// Update aggregations
	s.totalTasks++

	if task.Status == TaskStatusSuccess {
		s.totalSuccess++
	} else if task.Status == TaskStatusError {
		s.totalErrors++
	}

	// Update per-type stats
	stats, ok := s.taskByType[task.Type]
	if !ok {
		stats = &taskTypeStats{}
		s.taskByType[task.Type] = stats
	}
	stats.count++
	if task.Status == TaskStatusSuccess {
		stats.successCount++
	}
	stats.totalDuration += task.Duration
}

// RecordExport counts one served PNG export.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) RecordExport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalExports++
}

// GetTaskMetrics returns aggregated operation statistics.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) GetTaskMetrics() TaskMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := TaskMetrics{
		TotalProcessed: s.totalTasks,
		TotalSuccess:   s.totalSuccess,
		TotalErrors:    s.totalErrors,
		TotalExports:   s.totalExports,
		ByType:         make(map[string]*TaskTypeMetrics),
	}

	for taskType, stats := range s.taskByType {
		var successRate float64
		if stats.count > 0 {
			successRate = float64(stats.successCount) / float64(stats.count) * 100
		}

		var avgDuration time.Duration
		if stats.count > 0 {
			avgDuration = stats.totalDuration / time.Duration(stats.count)
		}

		metrics.ByType[taskType] = &TaskTypeMetrics{
			Count:       stats.count,
			SuccessRate: successRate,
			AvgDuration: avgDuration,
		}
	}

	return metrics
}

// GetRecentTasks returns the N most recent task records, most recent first.
// If limit exceeds available tasks, all available are returned.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) GetRecentTasks(limit int) []TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.taskSize == 0 {
		return []TaskRecord{}
	}

	if limit > s.taskSize {
		limit = s.taskSize
	}

	result := make([]TaskRecord, limit)
	for i := 0; i < limit; i++ {
		// Work backwards from head so the most recent record comes first
		idx := (s.taskHead - 1 - i + s.taskCap) % s.taskCap
		result[i] = s.taskHistory[idx]
	}

	return result
}

// GetSystemStatus returns the overall service health status.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) GetSystemStatus() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SystemStatus{
		Health:    SystemHealthRunning,
		Version:   s.version,
		Provider:  s.provider,
		Uptime:    time.Since(s.startTime),
		LastCheck: time.Now(),
	}
}

// Verify MetricsStore implements MetricsCollector interface
var _ MetricsCollector = (*MetricsStore)(nil)
