package recorder

import (
	"time"

	"LiquiMind/internal/model"
)

// Submission outcomes stored in reward_submissions.status.
const (
	StatusCommitted = "COMMITTED"
	StatusFailed    = "FAILED"
	StatusSkipped   = "SKIPPED"
)

// Retrain outcomes stored in retrain_runs.status.
const (
	RetrainOK     = "OK"
	RetrainFailed = "FAILED"
)

// CycleEvent summarises one activity scheduling cycle.
type CycleEvent struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Wallets    int
	Submitted  int
	Skipped    int
	Failed     int
	Note       string // e.g. "panic recovered"
}

// SubmissionEvent records one reward submission attempt.
type SubmissionEvent struct {
	CycleID   string
	Wallet    string
	Activity  model.Activity
	Count     uint64
	Tier      model.Tier
	ContentID string
	Status    string
	Error     string
	At        time.Time
}

// RetrainEvent records one retrain cycle.
type RetrainEvent struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Samples    int
	Version    int
	Loss       float64
	Status     string
	Error      string
}

// Summary aggregates history since a point in time, for the daily digest.
type Summary struct {
	Since         time.Time
	Cycles        int
	Committed     int
	Failed        int
	Skipped       int
	Retrains      int
	RetrainFailed int
	LatestVersion int
	LastRetrainAt time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordCycle(evt *CycleEvent) error
	RecordSubmission(evt *SubmissionEvent) error
	RecordRetrain(evt *RetrainEvent) error
	// LastSubmission returns the time of the latest committed submission
	// for (wallet, activity). ok is false when none exists.
	LastSubmission(wallet string, activity model.Activity) (at time.Time, ok bool, err error)
	Summary(since time.Time) (*Summary, error)
	Close() error
}
