package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"LiquiMind/internal/model"
	"LiquiMind/internal/notifier"
	"LiquiMind/internal/recorder"
	"LiquiMind/internal/tier"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// CourseCatalog is the course cache as seen by operator commands.
type CourseCatalog interface {
	GetCourses(ctx context.Context) []model.Course
	Snapshot() (model.CachedCourseList, bool)
	Invalidate()
}

// Orchestrator runs both loops and the operator surface around them.
type Orchestrator struct {
	Activity *ActivityScheduler
	Retrain  *RetrainScheduler
	Cron     *cron.Cron
	Courses  CourseCatalog
	Recorder recorder.Recorder
	Notifier notifier.Notifier
	now      func() time.Time
}

// NewOrchestrator creates an Orchestrator. courses, rec and n may be nil.
func NewOrchestrator(a *ActivityScheduler, r *RetrainScheduler, courses CourseCatalog, rec recorder.Recorder, n notifier.Notifier) *Orchestrator {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	return &Orchestrator{
		Activity: a,
		Retrain:  r,
		Cron:     cron.New(cron.WithSeconds()),
		Courses:  courses,
		Recorder: rec,
		Notifier: n,
		now:      time.Now,
	}
}

// RegisterDigest schedules the daily digest (six-field cron spec).
func (o *Orchestrator) RegisterDigest(spec string) error {
	if _, err := o.Cron.AddFunc(spec, o.SendDigest); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Run starts both schedulers and blocks until both have stopped.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.Cron.Start()
	log.Println("[INFO] orchestrator started")
	defer func() {
		<-o.Cron.Stop().Done()
		log.Println("[INFO] orchestrator stopped")
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return o.Activity.Run(gctx) })
	g.Go(func() error { return o.Retrain.Run(gctx) })
	return g.Wait()
}

// SendDigest sends the last 24h summary.
func (o *Orchestrator) SendDigest() {
	summary, err := o.Recorder.Summary(o.now().Add(-24 * time.Hour))
	if err != nil {
		log.Printf("[ERROR] build digest: %v", err)
		return
	}
	if err := o.Notifier.Send(notifier.FormatDailyDigest(summary)); err != nil {
		log.Printf("[ERROR] send digest: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (o *Orchestrator) HandleCommand(command string) string {
	fields := strings.Fields(strings.ToLower(command))
	if len(fields) == 0 {
		return commandHelp
	}
	cmd, args := fields[0], fields[1:]
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/status":
		return notifier.FormatStatus(o.status())
	case "/tiers":
		return notifier.FormatTierTable(tier.Table())
	case "/courses":
		if o.Courses == nil {
			return notifier.FormatCourses(nil)
		}
		if len(args) > 0 && args[0] == "refresh" {
			o.Courses.Invalidate()
			log.Println("[INFO] course cache invalidated by operator")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return notifier.FormatCourses(o.Courses.GetCourses(ctx))
	case "/digest":
		o.SendDigest()
		return ""
	default:
		return commandHelp
	}
}

const commandHelp = "Available commands:\n• /status\n• /tiers\n• /courses [refresh]\n• /digest"

func (o *Orchestrator) status() *notifier.Status {
	st := &notifier.Status{}
	if o.Activity != nil {
		state, next := o.Activity.Status()
		st.ActivityState, st.NextActivity = state.String(), next
	}
	if o.Retrain != nil {
		state, next := o.Retrain.Status()
		st.RetrainState, st.NextRetrain = state.String(), next
		p := o.Retrain.Policy()
		st.PolicyVersion, st.PolicySamples = p.Version, p.Samples
		st.CheckpointPath = o.Retrain.CheckpointPath()
	}
	if o.Courses != nil {
		if snap, ok := o.Courses.Snapshot(); ok {
			st.CoursesCached, st.CoursesFetched = len(snap.Courses), snap.FetchedAt
		}
	}
	return st
}
