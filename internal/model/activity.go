package model

import "strings"

// Activity is a user action that triggers a reward evaluation.
type Activity string

const (
	ActivityTradingVolume  Activity = "trading_volume"
	ActivityCompleteCourse Activity = "complete_course"
	ActivitySubscribe      Activity = "subscribe"
	ActivityReferral       Activity = "referral"
	// ActivityCustom covers any activity name outside the closed set.
	ActivityCustom Activity = "custom"
)

// ParseActivity maps a wire name onto the closed activity set.
// Unknown names map to ActivityCustom.
func ParseActivity(s string) Activity {
	switch Activity(strings.ToLower(strings.TrimSpace(s))) {
	case ActivityTradingVolume:
		return ActivityTradingVolume
	case ActivityCompleteCourse:
		return ActivityCompleteCourse
	case ActivitySubscribe:
		return ActivitySubscribe
	case ActivityReferral:
		return ActivityReferral
	default:
		return ActivityCustom
	}
}

// Title returns the human readable form, e.g. "Trading Volume".
func (a Activity) Title() string {
	words := strings.Split(string(a), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ActivityEvent is one reward evaluation for a wallet in a scheduling cycle.
type ActivityEvent struct {
	Wallet   string
	Activity Activity
	Count    uint64
	// Tier is the subscription tier snapshot read by the gate for this cycle.
	Tier Tier
	// Course is an optional course title used as a prompt hint.
	Course string
}
