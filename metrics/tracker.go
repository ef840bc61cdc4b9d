package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"memestudio/session"
)

// TaskTracker adapts session task lifecycle events into TaskRecord atoms and
// feeds them to a MetricsCollector. It satisfies session.TaskObserver.
//
// Start times are keyed by session and kind; the session controller
// guarantees at most one in-flight operation per kind per session, so the key
// never collides.
type TaskTracker struct {
	mu        sync.Mutex
	collector MetricsCollector
	starts    map[string]time.Time
}

// NewTaskTracker builds a tracker feeding the given collector.
func NewTaskTracker(collector MetricsCollector) *TaskTracker {
	return &TaskTracker{
		collector: collector,
		starts:    make(map[string]time.Time),
	}
}

func taskKey(sessionID string, kind session.OpKind) string {
	return sessionID + "/" + string(kind)
}

// TaskStarted records the start time of an operation.
func (t *TaskTracker) TaskStarted(sessionID string, kind session.OpKind) {
	t.mu.Lock()
	t.starts[taskKey(sessionID, kind)] = time.Now()
	t.mu.Unlock()
}

// TaskFinished emits a TaskRecord for the completed operation.
func (t *TaskTracker) TaskFinished(sessionID string, kind session.OpKind, taskErr error) {
	now := time.Now()

	t.mu.Lock()
	key := taskKey(sessionID, kind)
	start, ok := t.starts[key]
	delete(t.starts, key)
	t.mu.Unlock()
	if !ok {
		start = now
	}

	record := TaskRecord{
		ID:        uuid.NewString(),
		Type:      string(kind),
		SessionID: sessionID,
		Status:    TaskStatusSuccess,
		StartTime: start,
		EndTime:   now,
		Duration:  now.Sub(start),
	}
	if taskErr != nil {
		record.Status = TaskStatusError
		record.ErrorMsg = taskErr.Error()
	}

	t.collector.RecordTask(record)
}

var _ session.TaskObserver = (*TaskTracker)(nil)
