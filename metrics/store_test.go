package metrics

import (
	"fmt"
	"testing"
	"time"
)

func testRecord(taskType, status string, d time.Duration) TaskRecord {
	start := time.Now().Add(-d)
	return TaskRecord{
		ID:        "task-" + taskType,
		Type:      taskType,
		SessionID: "session-1",
		Status:    status,
		StartTime: start,
		EndTime:   start.Add(d),
		Duration:  d,
	}
}

// TestMetricsStore_RecordTask tests totals and per-type aggregation.
func TestMetricsStore_RecordTask(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	store.RecordTask(testRecord(TaskTypeCaptions, TaskStatusSuccess, 100*time.Millisecond))
	store.RecordTask(testRecord(TaskTypeCaptions, TaskStatusSuccess, 300*time.Millisecond))
	store.RecordTask(testRecord(TaskTypeCaptions, TaskStatusError, 200*time.Millisecond))
	store.RecordTask(testRecord(TaskTypeEdit, TaskStatusSuccess, 2*time.Second))

	m := store.GetTaskMetrics()
	if m.TotalProcessed != 4 {
		t.Errorf("TotalProcessed = %d, want 4", m.TotalProcessed)
	}
	if m.TotalSuccess != 3 {
		t.Errorf("TotalSuccess = %d, want 3", m.TotalSuccess)
	}
	if m.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", m.TotalErrors)
	}

	captions := m.ByType[TaskTypeCaptions]
	if captions == nil {
		t.Fatal("ByType[captions] = nil, want stats")
	}
	if captions.Count != 3 {
		t.Errorf("captions Count = %d, want 3", captions.Count)
	}
	if want := float64(2) / 3 * 100; captions.SuccessRate < want-0.01 || captions.SuccessRate > want+0.01 {
		t.Errorf("captions SuccessRate = %f, want %f", captions.SuccessRate, want)
	}
	if captions.AvgDuration != 200*time.Millisecond {
		t.Errorf("captions AvgDuration = %v, want 200ms", captions.AvgDuration)
	}
}

// TestMetricsStore_RecordExport tests the export counter.
func TestMetricsStore_RecordExport(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	store.RecordExport()
	store.RecordExport()

	if m := store.GetTaskMetrics(); m.TotalExports != 2 {
		t.Errorf("TotalExports = %d, want 2", m.TotalExports)
	}
}

// TestMetricsStore_GetRecentTasks tests ordering and the limit.
func TestMetricsStore_GetRecentTasks(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	for i := 0; i < 5; i++ {
		r := testRecord(TaskTypeLoad, TaskStatusSuccess, time.Millisecond)
		r.ID = fmt.Sprintf("task-%d", i)
		store.RecordTask(r)
	}

	recent := store.GetRecentTasks(3)
	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want 3", len(recent))
	}
	// Most recent first.
	for i, wantID := range []string{"task-4", "task-3", "task-2"} {
		if recent[i].ID != wantID {
			t.Errorf("recent[%d].ID = %q, want %q", i, recent[i].ID, wantID)
		}
	}

	if got := store.GetRecentTasks(100); len(got) != 5 {
		t.Errorf("len(GetRecentTasks(100)) = %d, want 5", len(got))
	}
	if got := store.GetRecentTasks(0); len(got) != 0 {
		t.Errorf("len(GetRecentTasks(0)) = %d, want 0", len(got))
	}
}

// TestMetricsStore_HistoryWraps tests the fixed-capacity ring.
func TestMetricsStore_HistoryWraps(t *testing.T) {
	store := NewMetricsStore(StoreConfig{TaskHistoryCapacity: 3}, time.Now())

	for i := 0; i < 5; i++ {
		r := testRecord(TaskTypeLoad, TaskStatusSuccess, time.Millisecond)
		r.ID = fmt.Sprintf("task-%d", i)
		store.RecordTask(r)
	}

	recent := store.GetRecentTasks(10)
	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want capacity 3", len(recent))
	}
	if recent[0].ID != "task-4" || recent[2].ID != "task-2" {
		t.Errorf("recent = [%s %s %s], want [task-4 task-3 task-2]",
			recent[0].ID, recent[1].ID, recent[2].ID)
	}

	// Aggregates still count everything that ever ran.
	if m := store.GetTaskMetrics(); m.TotalProcessed != 5 {
		t.Errorf("TotalProcessed = %d, want 5", m.TotalProcessed)
	}
}

// TestMetricsStore_GetSystemStatus tests health metadata.
func TestMetricsStore_GetSystemStatus(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	store := NewMetricsStore(StoreConfig{
		TaskHistoryCapacity: 10,
		Version:             "1.2.3",
		Provider:            "gemini",
	}, start)

	status := store.GetSystemStatus()
	if status.Health != SystemHealthRunning {
		t.Errorf("Health = %q, want %q", status.Health, SystemHealthRunning)
	}
	if status.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", status.Version)
	}
	if status.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", status.Provider)
	}
	if status.Uptime < time.Minute {
		t.Errorf("Uptime = %v, want at least a minute", status.Uptime)
	}
}
