package recorder

import (
	"time"

	"LiquiMind/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *CycleEvent) error           { return nil }
func (n *NoopRecorder) RecordSubmission(_ *SubmissionEvent) error { return nil }
func (n *NoopRecorder) RecordRetrain(_ *RetrainEvent) error       { return nil }
func (n *NoopRecorder) Close() error                              { return nil }

func (n *NoopRecorder) LastSubmission(string, model.Activity) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (n *NoopRecorder) Summary(since time.Time) (*Summary, error) {
	return &Summary{Since: since}, nil
}
