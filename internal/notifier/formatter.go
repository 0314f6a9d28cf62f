package notifier

import (
	"fmt"
	"strings"
	"time"

	"LiquiMind/internal/model"
	"LiquiMind/internal/recorder"
	"LiquiMind/internal/strategy"
)

// RetrainReport describes one finished retrain cycle.
type RetrainReport struct {
	RunID    string
	Version  int
	Samples  int
	Loss     float64
	Duration time.Duration
	Signals  []strategy.Signal
	Err      error
}

// CycleReport describes one activity cycle that had failures.
type CycleReport struct {
	ID        string
	Wallets   int
	Submitted int
	Skipped   int
	Failed    int
	Errors    []string
}

// Status is the live view answered to /status.
type Status struct {
	ActivityState  string
	RetrainState   string
	NextActivity   time.Time
	NextRetrain    time.Time
	PolicyVersion  int
	PolicySamples  int
	CheckpointPath string
	CoursesCached  int
	CoursesFetched time.Time
}

// FormatRetrainReport formats a retrain outcome into a Telegram message.
func FormatRetrainReport(r *RetrainReport) string {
	var b strings.Builder

	if r.Err != nil {
		b.WriteString(fmt.Sprintf("⚠️ <b>LiquiMind retrain failed</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
		b.WriteString(fmt.Sprintf("Error: %s\n", escape(r.Err.Error())))
		b.WriteString(fmt.Sprintf("Serving policy stays at v%d\n", r.Version))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("🧠 <b>LiquiMind retrain</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Policy: v%d\n", r.Version))
	b.WriteString(fmt.Sprintf("Samples: %d\n", r.Samples))
	b.WriteString(fmt.Sprintf("Loss: %.4f\n", r.Loss))
	b.WriteString(fmt.Sprintf("Took: %s\n", r.Duration.Round(time.Millisecond)))

	if len(r.Signals) > 0 {
		b.WriteString("\n📈 <b>Signals:</b>\n")
		for _, s := range r.Signals {
			b.WriteString(fmt.Sprintf("  %s: %s (%.2f)\n", escape(s.Pair), s.Action, s.Score))
		}
	}
	return b.String()
}

// FormatCycleFailure formats an activity cycle that had failed submissions.
func FormatCycleFailure(c *CycleReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 <b>Reward cycle errors</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Cycle: %s\n", c.ID))
	b.WriteString(fmt.Sprintf("Wallets: %d | Submitted: %d | Skipped: %d | Failed: %d\n", c.Wallets, c.Submitted, c.Skipped, c.Failed))
	for _, e := range c.Errors {
		b.WriteString(fmt.Sprintf("  • %s\n", escape(e)))
	}
	return b.String()
}

// FormatDailyDigest formats the recorder summary for the last day.
func FormatDailyDigest(s *recorder.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>LiquiMind daily digest</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Activity cycles: %d\n", s.Cycles))
	b.WriteString(fmt.Sprintf("Rewards committed: %d\n", s.Committed))
	b.WriteString(fmt.Sprintf("Rewards failed: %d\n", s.Failed))
	if s.Skipped > 0 {
		b.WriteString(fmt.Sprintf("Rewards skipped: %d\n", s.Skipped))
	}
	b.WriteString(fmt.Sprintf("Retrains: %d (failed %d)\n", s.Retrains, s.RetrainFailed))
	if !s.LastRetrainAt.IsZero() {
		b.WriteString(fmt.Sprintf("Policy: v%d since %s\n", s.LatestVersion, s.LastRetrainAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatTierTable formats the reward schedule.
func FormatTierTable(rows []model.RewardTier) string {
	var b strings.Builder
	b.WriteString("🏅 <b>Reward tiers</b>\n\n")
	b.WriteString("<pre>")
	b.WriteString(fmt.Sprintf("%-4s %-9s %5s %5s %4s  %s\n", "tier", "rarity", "vote", "boost", "fee", "perks"))
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-4d %-9s %5d %4d%% %3d%%  %s\n",
			r.Tier, r.Rarity, r.VotingPower, r.StakingBoostPct, r.FeeDiscountPct, escape(r.Perks)))
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatCourses formats the cached course list.
func FormatCourses(courses []model.Course) string {
	if len(courses) == 0 {
		return "📚 No courses available"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📚 <b>Courses</b> (%d)\n\n", len(courses)))
	for _, c := range courses {
		b.WriteString(fmt.Sprintf("• %s\n", escape(c.Title)))
	}
	return b.String()
}

// FormatStatus formats the live scheduler status.
func FormatStatus(s *Status) string {
	var b strings.Builder
	b.WriteString("📦 <b>LiquiMind status</b>\n\n")
	b.WriteString(fmt.Sprintf("Activity loop: %s\n", s.ActivityState))
	if !s.NextActivity.IsZero() {
		b.WriteString(fmt.Sprintf("  next: %s\n", s.NextActivity.Format("2006-01-02 15:04:05")))
	}
	b.WriteString(fmt.Sprintf("Retrain loop: %s\n", s.RetrainState))
	if !s.NextRetrain.IsZero() {
		b.WriteString(fmt.Sprintf("  next: %s\n", s.NextRetrain.Format("2006-01-02 15:04")))
	}
	b.WriteString(fmt.Sprintf("Policy: v%d (%d samples)\n", s.PolicyVersion, s.PolicySamples))
	if s.CheckpointPath != "" {
		b.WriteString(fmt.Sprintf("Checkpoint: <code>%s</code>\n", escape(s.CheckpointPath)))
	}
	if s.CoursesFetched.IsZero() {
		b.WriteString("Courses: not fetched\n")
	} else {
		b.WriteString(fmt.Sprintf("Courses: %d (fetched %s)\n", s.CoursesCached, s.CoursesFetched.Format("2006-01-02 15:04")))
	}
	return b.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return htmlEscaper.Replace(s) }
