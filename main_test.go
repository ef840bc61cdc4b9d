package main

import (
	"errors"
	"testing"
	"time"

	"memestudio/metrics"
	"memestudio/session"
	"memestudio/webui"
)

// captureFeed records broadcast task updates for inspection.
type captureFeed struct {
	updates []webui.TaskUpdateData
}

func (f *captureFeed) BroadcastTaskUpdate(data webui.TaskUpdateData) {
	f.updates = append(f.updates, data)
}

func newTestFanout() (*taskFanout, *captureFeed, *metrics.MetricsStore) {
	collector := metrics.NewMetricsStore(metrics.DefaultStoreConfig(), time.Now())
	feed := &captureFeed{}
	fanout := newTaskFanout(metrics.NewTaskTracker(collector), feed)
	return fanout, feed, collector
}

func TestTaskFanout_RecordsMetrics(t *testing.T) {
	fanout, _, collector := newTestFanout()

	fanout.TaskStarted("sess-1", session.OpCaptions)
	fanout.TaskFinished("sess-1", session.OpCaptions, nil)

	fanout.TaskStarted("sess-1", session.OpEdit)
	fanout.TaskFinished("sess-1", session.OpEdit, errors.New("provider unavailable"))

	m := collector.GetTaskMetrics()
	if m.TotalProcessed != 2 {
		t.Errorf("TotalProcessed = %d, want 2", m.TotalProcessed)
	}
	if m.TotalSuccess != 1 {
		t.Errorf("TotalSuccess = %d, want 1", m.TotalSuccess)
	}
	if m.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", m.TotalErrors)
	}
}

func TestTaskFanout_PairsStartAndFinishIDs(t *testing.T) {
	fanout, feed, _ := newTestFanout()

	fanout.TaskStarted("sess-1", session.OpCaptions)
	fanout.TaskFinished("sess-1", session.OpCaptions, nil)

	if len(feed.updates) != 2 {
		t.Fatalf("len(updates) = %d, want 2", len(feed.updates))
	}
	if feed.updates[0].Status != "processing" {
		t.Errorf("first Status = %q, want processing", feed.updates[0].Status)
	}
	if feed.updates[1].Status != "success" {
		t.Errorf("second Status = %q, want success", feed.updates[1].Status)
	}
	if feed.updates[0].TaskID == "" {
		t.Fatal("TaskID is empty")
	}
	if feed.updates[0].TaskID != feed.updates[1].TaskID {
		t.Errorf("finish TaskID = %q, want %q (same as start)",
			feed.updates[1].TaskID, feed.updates[0].TaskID)
	}
}

func TestTaskFanout_ConcurrentKindsKeepDistinctIDs(t *testing.T) {
	fanout, feed, _ := newTestFanout()

	fanout.TaskStarted("sess-1", session.OpCaptions)
	fanout.TaskStarted("sess-1", session.OpAnalyze)
	fanout.TaskFinished("sess-1", session.OpAnalyze, nil)
	fanout.TaskFinished("sess-1", session.OpCaptions, nil)

	if len(feed.updates) != 4 {
		t.Fatalf("len(updates) = %d, want 4", len(feed.updates))
	}
	captionsStart, analyzeStart := feed.updates[0], feed.updates[1]
	analyzeEnd, captionsEnd := feed.updates[2], feed.updates[3]

	if captionsStart.TaskID == analyzeStart.TaskID {
		t.Error("different operation kinds share a TaskID")
	}
	if analyzeEnd.TaskID != analyzeStart.TaskID {
		t.Errorf("analyze finish TaskID = %q, want %q", analyzeEnd.TaskID, analyzeStart.TaskID)
	}
	if captionsEnd.TaskID != captionsStart.TaskID {
		t.Errorf("captions finish TaskID = %q, want %q", captionsEnd.TaskID, captionsStart.TaskID)
	}
}

func TestTaskFanout_RecentTasksCarrySessionAndError(t *testing.T) {
	fanout, _, collector := newTestFanout()

	fanout.TaskStarted("sess-9", session.OpAnalyze)
	fanout.TaskFinished("sess-9", session.OpAnalyze, errors.New("timeout"))

	recent := collector.GetRecentTasks(10)
	if len(recent) != 1 {
		t.Fatalf("len(recent) = %d, want 1", len(recent))
	}
	if recent[0].SessionID != "sess-9" {
		t.Errorf("SessionID = %q, want sess-9", recent[0].SessionID)
	}
	if recent[0].Type != string(session.OpAnalyze) {
		t.Errorf("Type = %q, want %q", recent[0].Type, session.OpAnalyze)
	}
	if recent[0].ErrorMsg != "timeout" {
		t.Errorf("ErrorMsg = %q, want timeout", recent[0].ErrorMsg)
	}
}

func TestTaskFanout_FinishWithoutStart(t *testing.T) {
	// A finish with no matching start still produces a record and an update
	fanout, feed, collector := newTestFanout()

	fanout.TaskFinished("sess-2", session.OpLoad, nil)

	if m := collector.GetTaskMetrics(); m.TotalProcessed != 1 {
		t.Errorf("TotalProcessed = %d, want 1", m.TotalProcessed)
	}
	if len(feed.updates) != 1 {
		t.Fatalf("len(updates) = %d, want 1", len(feed.updates))
	}
	if feed.updates[0].TaskID == "" {
		t.Error("TaskID is empty for unmatched finish")
	}
}

// The real websocket broadcaster must satisfy the feed interface.
var _ taskFeed = (*webui.WebSocketBroadcaster)(nil)
