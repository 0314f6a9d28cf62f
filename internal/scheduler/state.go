package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ActivityState is a stage of the reward loop.
type ActivityState int

const (
	ActivityWaiting ActivityState = iota
	ActivityCheckEligibility
	ActivitySubmitting
)

func (s ActivityState) String() string {
	switch s {
	case ActivityWaiting:
		return "WAITING"
	case ActivityCheckEligibility:
		return "CHECK_ELIGIBILITY"
	case ActivitySubmitting:
		return "SUBMITTING"
	default:
		return fmt.Sprintf("ActivityState(%d)", int(s))
	}
}

// RetrainState is a stage of the retrain loop.
type RetrainState int

const (
	RetrainWaiting RetrainState = iota
	RetrainCollecting
	RetrainTraining
	RetrainPersisting
)

func (s RetrainState) String() string {
	switch s {
	case RetrainWaiting:
		return "WAITING"
	case RetrainCollecting:
		return "COLLECTING"
	case RetrainTraining:
		return "TRAINING"
	case RetrainPersisting:
		return "PERSISTING"
	default:
		return fmt.Sprintf("RetrainState(%d)", int(s))
	}
}

// waitUntil blocks until the schedule's next activation after now.
// It returns false if ctx ends first.
func waitUntil(ctx context.Context, next time.Time, now time.Time) bool {
	timer := time.NewTimer(next.Sub(now))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// nextAfter returns the next activation, falling back to a minute later for
// schedules that never fire again.
func nextAfter(s cron.Schedule, now time.Time) time.Time {
	next := s.Next(now)
	if next.IsZero() {
		return now.Add(time.Minute)
	}
	return next
}
