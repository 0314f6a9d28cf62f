package scheduler

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"LiquiMind/internal/model"
	"LiquiMind/internal/notifier"
	"LiquiMind/internal/recorder"
	"LiquiMind/internal/strategy"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// TradeCollector projects recent trade events into feature rows.
type TradeCollector interface {
	Collect(ctx context.Context) ([]model.TradeFeatures, error)
}

// CheckpointStore holds the serving checkpoint.
type CheckpointStore interface {
	Current() model.PolicyCheckpoint
	Commit(cp *model.PolicyCheckpoint) error
}

// Trainer runs a training pass off the calling goroutine.
type Trainer interface {
	Train(ctx context.Context, p *strategy.Policy, rows []model.TradeFeatures) (strategy.Result, error)
}

// RetrainResult summarises one retrain cycle.
type RetrainResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Samples    int
	Version    int
	Loss       float64
	Signals    []strategy.Signal
	Err        error
	// Stopped is set when shutdown interrupted the run. A stopped run is
	// neither recorded nor reported as a failure.
	Stopped bool
}

// RetrainScheduler runs WAITING -> COLLECTING -> TRAINING -> PERSISTING -> WAITING.
type RetrainScheduler struct {
	schedule  cron.Schedule
	collector TradeCollector
	store     CheckpointStore
	trainer   Trainer
	rec       recorder.Recorder
	notify    notifier.Notifier
	now       func() time.Time

	mu     sync.Mutex
	state  RetrainState
	next   time.Time
	policy *strategy.Policy
}

// NewRetrainScheduler restores the serving policy from store.
func NewRetrainScheduler(schedule cron.Schedule, c TradeCollector, store CheckpointStore, tr Trainer, rec recorder.Recorder, n notifier.Notifier) (*RetrainScheduler, error) {
	policy, err := strategy.FromCheckpoint(store.Current())
	if err != nil {
		return nil, fmt.Errorf("restore policy: %w", err)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	return &RetrainScheduler{
		schedule:  schedule,
		collector: c,
		store:     store,
		trainer:   tr,
		rec:       rec,
		notify:    n,
		now:       time.Now,
		policy:    policy,
	}, nil
}

// Status returns the current state and the next scheduled cycle.
func (s *RetrainScheduler) Status() (RetrainState, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.next
}

// CheckpointPath returns where the checkpoint store persists, or "" when it
// is not file backed.
func (s *RetrainScheduler) CheckpointPath() string {
	if p, ok := s.store.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}

// Policy returns a copy of the serving policy.
func (s *RetrainScheduler) Policy() *strategy.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.Clone()
}

func (s *RetrainScheduler) setState(st RetrainState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run starts with a cycle, then loops until ctx is cancelled.
func (s *RetrainScheduler) Run(ctx context.Context) error {
	if s.schedule == nil {
		return fmt.Errorf("retrain scheduler: no schedule")
	}
	log.Printf("[INFO] retrain scheduler started at policy v%d", s.Policy().Version)

	for ctx.Err() == nil {
		s.RunCycle(ctx)

		now := s.now()
		next := nextAfter(s.schedule, now)
		s.mu.Lock()
		s.state = RetrainWaiting
		s.next = next
		s.mu.Unlock()
		if !waitUntil(ctx, next, now) {
			break
		}
	}

	s.setState(RetrainWaiting)
	log.Println("[INFO] retrain scheduler stopped")
	return nil
}

// RunCycle collects, trains and persists once. On any failure the serving
// policy and the on-disk checkpoint stay unchanged.
func (s *RetrainScheduler) RunCycle(ctx context.Context) (res RetrainResult) {
	res = RetrainResult{RunID: uuid.NewString(), StartedAt: s.now(), Version: s.Policy().Version}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] retrain %s panic: %v\n%s", res.RunID, r, debug.Stack())
			res.Err = fmt.Errorf("%w: panic: %v", model.ErrTrainingFailure, r)
		}
		res.FinishedAt = s.now()
		if res.Err != nil && ctx.Err() != nil {
			res.Stopped = true
		}
		s.setState(RetrainWaiting)
		s.finish(&res)
	}()

	s.setState(RetrainCollecting)
	rows, err := s.collector.Collect(ctx)
	if err != nil {
		res.Err = fmt.Errorf("collect trades: %w", err)
		return res
	}
	res.Samples = len(rows)

	s.setState(RetrainTraining)
	out, err := s.trainer.Train(ctx, s.Policy(), rows)
	if err != nil {
		res.Err = fmt.Errorf("train: %w", err)
		return res
	}

	s.setState(RetrainPersisting)
	if err := s.store.Commit(out.Policy.Checkpoint(s.now())); err != nil {
		res.Err = fmt.Errorf("persist: %w", err)
		return res
	}

	s.mu.Lock()
	s.policy = out.Policy
	s.mu.Unlock()

	res.Version = out.Policy.Version
	res.Loss = out.Loss
	res.Signals = strategy.Evaluate(out.Policy, rows)
	return res
}

func (s *RetrainScheduler) finish(res *RetrainResult) {
	if res.Stopped {
		log.Printf("[INFO] retrain %s stopped by shutdown, keeping policy v%d", res.RunID, res.Version)
		return
	}
	evt := &recorder.RetrainEvent{
		RunID:      res.RunID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Samples:    res.Samples,
		Version:    res.Version,
		Loss:       res.Loss,
		Status:     recorder.RetrainOK,
	}
	if res.Err != nil {
		evt.Status = recorder.RetrainFailed
		evt.Error = res.Err.Error()
		log.Printf("[ERROR] retrain %s failed, keeping policy v%d: %v", res.RunID, res.Version, res.Err)
	} else {
		log.Printf("[INFO] retrain %s: policy v%d, %d samples, loss %.4f", res.RunID, res.Version, res.Samples, res.Loss)
	}
	if err := s.rec.RecordRetrain(evt); err != nil {
		log.Printf("[ERROR] record retrain: %v", err)
	}

	if err := s.notify.Send(notifier.FormatRetrainReport(&notifier.RetrainReport{
		RunID:    res.RunID,
		Version:  res.Version,
		Samples:  res.Samples,
		Loss:     res.Loss,
		Duration: res.FinishedAt.Sub(res.StartedAt),
		Signals:  res.Signals,
		Err:      res.Err,
	})); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
