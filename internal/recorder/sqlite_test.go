package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"LiquiMind/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestLastSubmission(t *testing.T) {
	r := openTemp(t)

	if _, ok, err := r.LastSubmission("0xW", model.ActivityReferral); err != nil || ok {
		t.Fatalf("empty history: ok=%v err=%v", ok, err)
	}

	base := time.Unix(1_700_000_000, 0)
	events := []*SubmissionEvent{
		{Wallet: "0xW", Activity: model.ActivityReferral, Count: 1, Status: StatusCommitted, ContentID: "a", At: base},
		{Wallet: "0xW", Activity: model.ActivityReferral, Count: 1, Status: StatusCommitted, ContentID: "b", At: base.Add(time.Hour)},
		{Wallet: "0xW", Activity: model.ActivityReferral, Count: 1, Status: StatusFailed, At: base.Add(2 * time.Hour)},
		{Wallet: "0xOther", Activity: model.ActivityReferral, Count: 1, Status: StatusCommitted, At: base.Add(3 * time.Hour)},
	}
	for _, e := range events {
		if err := r.RecordSubmission(e); err != nil {
			t.Fatal(err)
		}
	}

	at, ok, err := r.LastSubmission("0xW", model.ActivityReferral)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if !at.Equal(base.Add(time.Hour)) {
		t.Errorf("last = %v, want %v", at, base.Add(time.Hour))
	}
}

func TestRecordSubmission_LargeCount(t *testing.T) {
	r := openTemp(t)
	err := r.RecordSubmission(&SubmissionEvent{
		Wallet: "0xW", Activity: model.ActivityTradingVolume, Count: 18_000_000_000_000_000_000, Status: StatusCommitted,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
}

func TestSummary(t *testing.T) {
	r := openTemp(t)
	since := time.Unix(1_700_000_000, 0)
	old := since.Add(-time.Hour)

	r.RecordCycle(&CycleEvent{ID: "old", StartedAt: old, FinishedAt: old})
	r.RecordCycle(&CycleEvent{ID: "c1", StartedAt: since, FinishedAt: since.Add(time.Second), Wallets: 1, Submitted: 2, Failed: 1})
	r.RecordCycle(&CycleEvent{ID: "c2", StartedAt: since.Add(time.Minute), FinishedAt: since.Add(time.Minute)})

	for _, status := range []string{StatusCommitted, StatusCommitted, StatusFailed, StatusSkipped} {
		r.RecordSubmission(&SubmissionEvent{Wallet: "0xW", Activity: model.ActivityReferral, Status: status, At: since.Add(time.Second)})
	}
	r.RecordSubmission(&SubmissionEvent{Wallet: "0xW", Activity: model.ActivityReferral, Status: StatusCommitted, At: old})

	r.RecordRetrain(&RetrainEvent{RunID: "r1", StartedAt: since, FinishedAt: since.Add(time.Minute), Version: 3, Status: RetrainOK})
	r.RecordRetrain(&RetrainEvent{RunID: "r2", StartedAt: since.Add(time.Hour), FinishedAt: since.Add(time.Hour), Status: RetrainFailed, Error: "disk full"})

	s, err := r.Summary(since)
	if err != nil {
		t.Fatal(err)
	}
	if s.Cycles != 2 {
		t.Errorf("cycles = %d, want 2", s.Cycles)
	}
	if s.Committed != 2 || s.Failed != 1 || s.Skipped != 1 {
		t.Errorf("submissions = %+v", s)
	}
	if s.Retrains != 2 || s.RetrainFailed != 1 {
		t.Errorf("retrains = %d failed = %d", s.Retrains, s.RetrainFailed)
	}
	if s.LatestVersion != 3 || !s.LastRetrainAt.Equal(since.Add(time.Minute)) {
		t.Errorf("latest = v%d at %v", s.LatestVersion, s.LastRetrainAt)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if _, ok, err := r.LastSubmission("0xW", model.ActivityReferral); ok || err != nil {
		t.Errorf("noop last submission: ok=%v err=%v", ok, err)
	}
	s, err := r.Summary(time.Unix(5, 0))
	if err != nil || s.Cycles != 0 || !s.Since.Equal(time.Unix(5, 0)) {
		t.Errorf("noop summary = %+v, %v", s, err)
	}
}
