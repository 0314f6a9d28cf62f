// Package tier is the single source of truth for reward economics.
package tier

import (
	"fmt"

	"LiquiMind/internal/model"
)

// schedule is indexed by tier: Common, Rare, Legendary, Mythic.
var schedule = [...]struct {
	votingPower  int
	stakingBoost int
	feeDiscount  int
}{
	{votingPower: 10, stakingBoost: 5, feeDiscount: 0},
	{votingPower: 40, stakingBoost: 10, feeDiscount: 3},
	{votingPower: 100, stakingBoost: 15, feeDiscount: 5},
	{votingPower: 200, stakingBoost: 20, feeDiscount: 10},
}

// Clamp maps any integer onto the defined tier range.
func Clamp(t model.Tier) model.Tier {
	if t < model.TierFree {
		return model.TierFree
	}
	if t > model.MaxTier {
		return model.MaxTier
	}
	return t
}

// RewardFor returns the rewards granted for activity at tier. It is pure and total.
func RewardFor(activity model.Activity, t model.Tier) model.RewardTier {
	t = Clamp(t)
	s := schedule[t]
	return model.RewardTier{
		Tier:            t,
		Rarity:          model.Rarity(t),
		VotingPower:     s.votingPower,
		StakingBoostPct: s.stakingBoost,
		FeeDiscountPct:  s.feeDiscount,
		Perks:           perksFor(activity, s.votingPower, s.stakingBoost, s.feeDiscount),
	}
}

func perksFor(activity model.Activity, voting, boost, discount int) string {
	switch activity {
	case model.ActivityCompleteCourse:
		return fmt.Sprintf("voting_power_%d", voting)
	case model.ActivityTradingVolume:
		return fmt.Sprintf("fee_discount_%d%%", discount)
	case model.ActivitySubscribe:
		return fmt.Sprintf("staking_boost_%d%%", boost)
	case model.ActivityReferral:
		return "referral_badge"
	case model.ActivityCustom:
		return "custom_badge"
	default:
		return "custom_badge"
	}
}

// Table returns the full schedule for every activity and tier, for display.
func Table() []model.RewardTier {
	activities := []model.Activity{
		model.ActivityTradingVolume,
		model.ActivityCompleteCourse,
		model.ActivitySubscribe,
		model.ActivityReferral,
	}
	out := make([]model.RewardTier, 0, len(activities)*len(schedule))
	for t := model.TierFree; t <= model.MaxTier; t++ {
		for _, a := range activities {
			out = append(out, RewardFor(a, t))
		}
	}
	return out
}
