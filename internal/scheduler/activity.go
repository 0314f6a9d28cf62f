package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"LiquiMind/internal/gate"
	"LiquiMind/internal/model"
	"LiquiMind/internal/notifier"
	"LiquiMind/internal/recorder"
	"LiquiMind/internal/reward"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Gate reports a wallet's subscription decision.
type Gate interface {
	Check(ctx context.Context, wallet string) (gate.Decision, error)
}

// Submitter commits one reward.
type Submitter interface {
	Submit(ctx context.Context, evt model.ActivityEvent) (*model.NFTMetadata, error)
}

// CourseSource lists courses for prompt hints.
type CourseSource interface {
	GetCourses(ctx context.Context) []model.Course
}

// ActivityTask is one reward evaluated for every eligible wallet per cycle.
type ActivityTask struct {
	Activity model.Activity
	Count    uint64
}

// DefaultActivities is the fixed per-cycle evaluation order.
var DefaultActivities = []ActivityTask{
	{Activity: model.ActivityTradingVolume, Count: 5_000_000_000_000_000_000},
	{Activity: model.ActivityCompleteCourse, Count: 1},
	{Activity: model.ActivityReferral, Count: 1},
}

// ActivityConfig configures the reward loop.
type ActivityConfig struct {
	Wallets    []string
	Schedule   cron.Schedule
	RunOnStart bool
	// DedupeWindow skips an activity whose last commit for the wallet is
	// more recent than the window. Zero disables it.
	DedupeWindow time.Duration
	Activities   []ActivityTask
	// FailureNoticeEvery limits failure notifications. Zero notifies every failed cycle.
	FailureNoticeEvery time.Duration
}

// CycleResult summarises one activity cycle.
type CycleResult struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Wallets    int
	Ineligible int
	Submitted  int
	Skipped    int
	Failed     int
	Cancelled  bool
	Errors     []string
	Note       string
}

// ActivityScheduler runs WAITING -> CHECK_ELIGIBILITY -> SUBMITTING -> WAITING.
type ActivityScheduler struct {
	cfg       ActivityConfig
	gate      Gate
	submitter Submitter
	courses   CourseSource
	rec       recorder.Recorder
	notify    notifier.Notifier
	now       func() time.Time

	mu         sync.Mutex
	state      ActivityState
	next       time.Time
	lastNotice time.Time
}

// NewActivityScheduler wires the reward loop. courses, rec and notify may be nil.
func NewActivityScheduler(cfg ActivityConfig, g Gate, s Submitter, courses CourseSource, rec recorder.Recorder, n notifier.Notifier) *ActivityScheduler {
	if cfg.Activities == nil {
		cfg.Activities = DefaultActivities
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if _, noop := rec.(*recorder.NoopRecorder); noop && cfg.DedupeWindow > 0 {
		log.Printf("[WARN] dedupe window %v disabled: no persistent recorder to read past submissions from", cfg.DedupeWindow)
	}
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	return &ActivityScheduler{
		cfg:       cfg,
		gate:      g,
		submitter: s,
		courses:   courses,
		rec:       rec,
		notify:    n,
		now:       time.Now,
	}
}

// Status returns the current state and the next scheduled cycle.
func (s *ActivityScheduler) Status() (ActivityState, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.next
}

func (s *ActivityScheduler) setState(st ActivityState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run loops until ctx is cancelled. It returns nil on cancellation.
func (s *ActivityScheduler) Run(ctx context.Context) error {
	if s.cfg.Schedule == nil {
		return fmt.Errorf("activity scheduler: no schedule")
	}
	log.Printf("[INFO] activity scheduler started: %d wallet(s), run_on_start=%v", len(s.cfg.Wallets), s.cfg.RunOnStart)

	skipWait := s.cfg.RunOnStart
	for {
		if ctx.Err() != nil {
			break
		}
		if !skipWait {
			now := s.now()
			next := nextAfter(s.cfg.Schedule, now)
			s.mu.Lock()
			s.state = ActivityWaiting
			s.next = next
			s.mu.Unlock()
			if !waitUntil(ctx, next, now) {
				break
			}
		}
		skipWait = false
		s.RunCycle(ctx)
	}

	s.setState(ActivityWaiting)
	log.Println("[INFO] activity scheduler stopped")
	return nil
}

// RunCycle evaluates every wallet once. Failures are isolated per wallet and
// per activity; a panic ends the cycle but not the loop.
func (s *ActivityScheduler) RunCycle(ctx context.Context) (res CycleResult) {
	res = CycleResult{ID: uuid.NewString(), StartedAt: s.now()}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] activity cycle %s panic: %v\n%s", res.ID, r, debug.Stack())
			res.Note = fmt.Sprintf("panic recovered: %v", r)
			res.Errors = append(res.Errors, res.Note)
		}
		res.FinishedAt = s.now()
		s.setState(ActivityWaiting)
		s.finish(&res)
	}()

	ctx = reward.WithCycleID(ctx, res.ID)
	for _, wallet := range s.cfg.Wallets {
		if ctx.Err() != nil {
			res.Cancelled = true
			return res
		}
		res.Wallets++

		s.setState(ActivityCheckEligibility)
		decision, err := s.gate.Check(ctx, wallet)
		if err != nil {
			log.Printf("[WARN] eligibility check for %s failed, skipping wallet: %v", wallet, err)
			res.Failed++
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		if !decision.Eligible {
			log.Printf("[INFO] %s not eligible (tier %d, expired %s), skipping",
				wallet, decision.Subscription.Tier, decision.Subscription.Expiry.Format(time.RFC3339))
			res.Ineligible++
			continue
		}

		s.setState(ActivitySubmitting)
		if cancelled := s.submitAll(ctx, wallet, decision.Subscription.Tier, &res); cancelled {
			res.Cancelled = true
			return res
		}
	}
	return res
}

// submitAll attempts every activity in order. It reports true if ctx was
// cancelled between activities.
func (s *ActivityScheduler) submitAll(ctx context.Context, wallet string, t model.Tier, res *CycleResult) bool {
	for _, task := range s.cfg.Activities {
		if ctx.Err() != nil {
			return true
		}
		if s.recentlyCommitted(wallet, task.Activity) {
			res.Skipped++
			s.recordSkip(ctx, wallet, task, t)
			continue
		}

		evt := model.ActivityEvent{Wallet: wallet, Activity: task.Activity, Count: task.Count, Tier: t}
		if task.Activity == model.ActivityCompleteCourse {
			evt.Course = s.courseHint(ctx)
		}

		// Shutdown must not abandon a submission mid-flight; collaborator
		// timeouts still bound it.
		if _, err := s.submitter.Submit(context.WithoutCancel(ctx), evt); err != nil {
			if errors.Is(err, model.ErrSubmissionInFlight) {
				log.Printf("[WARN] %s %s already in flight", wallet, task.Activity)
			} else {
				log.Printf("[ERROR] submit %s for %s: %v", task.Activity, wallet, err)
			}
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s %s: %v", wallet, task.Activity, err))
			continue
		}
		res.Submitted++
	}
	return false
}

func (s *ActivityScheduler) recentlyCommitted(wallet string, activity model.Activity) bool {
	if s.cfg.DedupeWindow <= 0 {
		return false
	}
	at, ok, err := s.rec.LastSubmission(wallet, activity)
	if err != nil {
		log.Printf("[WARN] dedupe lookup for %s %s: %v", wallet, activity, err)
		return false
	}
	return ok && s.now().Sub(at) < s.cfg.DedupeWindow
}

func (s *ActivityScheduler) recordSkip(ctx context.Context, wallet string, task ActivityTask, t model.Tier) {
	if err := s.rec.RecordSubmission(&recorder.SubmissionEvent{
		CycleID:  reward.CycleID(ctx),
		Wallet:   wallet,
		Activity: task.Activity,
		Count:    task.Count,
		Tier:     t,
		Status:   recorder.StatusSkipped,
		Error:    "within dedupe window",
		At:       s.now(),
	}); err != nil {
		log.Printf("[ERROR] record skipped submission: %v", err)
	}
}

func (s *ActivityScheduler) courseHint(ctx context.Context) string {
	if s.courses == nil {
		return ""
	}
	courses := s.courses.GetCourses(ctx)
	if len(courses) == 0 {
		return ""
	}
	return courses[0].Title
}

func (s *ActivityScheduler) finish(res *CycleResult) {
	log.Printf("[INFO] activity cycle %s: wallets=%d submitted=%d skipped=%d ineligible=%d failed=%d",
		res.ID, res.Wallets, res.Submitted, res.Skipped, res.Ineligible, res.Failed)

	if err := s.rec.RecordCycle(&recorder.CycleEvent{
		ID:         res.ID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Wallets:    res.Wallets,
		Submitted:  res.Submitted,
		Skipped:    res.Skipped + res.Ineligible,
		Failed:     res.Failed,
		Note:       res.Note,
	}); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}

	if res.Failed == 0 && res.Note == "" {
		return
	}
	s.mu.Lock()
	due := s.cfg.FailureNoticeEvery <= 0 || s.lastNotice.IsZero() || res.FinishedAt.Sub(s.lastNotice) >= s.cfg.FailureNoticeEvery
	if due {
		s.lastNotice = res.FinishedAt
	}
	s.mu.Unlock()
	if !due {
		return
	}
	if err := s.notify.Send(notifier.FormatCycleFailure(&notifier.CycleReport{
		ID:        res.ID,
		Wallets:   res.Wallets,
		Submitted: res.Submitted,
		Skipped:   res.Skipped + res.Ineligible,
		Failed:    res.Failed,
		Errors:    res.Errors,
	})); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
