package model

import "time"

// NeverExpires is the latest representable expiry. On-chain expiries past it,
// including the u64 maximum, decode to this value.
var NeverExpires = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// SubscriptionState is a per-cycle snapshot of a wallet's subscription.
type SubscriptionState struct {
	Tier   Tier
	Expiry time.Time
	// Cost is kept as a decimal string, token amounts overflow int64.
	Cost string
}

// ActiveAt reports whether the subscription permits activity logging at now.
// The free tier never expires.
func (s SubscriptionState) ActiveAt(now time.Time) bool {
	if s.Tier == TierFree {
		return true
	}
	return !s.Expiry.Before(now)
}
