package tier

import (
	"testing"

	"LiquiMind/internal/model"
)

func TestRewardFor_Schedule(t *testing.T) {
	tests := []struct {
		tier     model.Tier
		voting   int
		boost    int
		discount int
		rarity   model.Rarity
	}{
		{model.TierFree, 10, 5, 0, model.RarityCommon},
		{model.TierBasic, 40, 10, 3, model.RarityRare},
		{model.TierPro, 100, 15, 5, model.RarityLegendary},
		{model.TierElite, 200, 20, 10, model.RarityMythic},
	}
	for _, tt := range tests {
		r := RewardFor(model.ActivityTradingVolume, tt.tier)
		if r.VotingPower != tt.voting || r.StakingBoostPct != tt.boost || r.FeeDiscountPct != tt.discount {
			t.Errorf("tier %d: got %d/%d/%d, want %d/%d/%d", tt.tier,
				r.VotingPower, r.StakingBoostPct, r.FeeDiscountPct, tt.voting, tt.boost, tt.discount)
		}
		if r.Rarity != tt.rarity {
			t.Errorf("tier %d: rarity = %v, want %v", tt.tier, r.Rarity, tt.rarity)
		}
	}
}

func TestRewardFor_StrictlyIncreasing(t *testing.T) {
	prev := RewardFor(model.ActivityReferral, model.TierFree)
	for tr := model.TierBasic; tr <= model.MaxTier; tr++ {
		cur := RewardFor(model.ActivityReferral, tr)
		if cur.VotingPower <= prev.VotingPower {
			t.Errorf("voting power not increasing at tier %d", tr)
		}
		if cur.StakingBoostPct <= prev.StakingBoostPct {
			t.Errorf("staking boost not increasing at tier %d", tr)
		}
		if cur.FeeDiscountPct <= prev.FeeDiscountPct {
			t.Errorf("fee discount not increasing at tier %d", tr)
		}
		prev = cur
	}
}

func TestRewardFor_Perks(t *testing.T) {
	tests := []struct {
		activity model.Activity
		want     string
	}{
		{model.ActivityCompleteCourse, "voting_power_40"},
		{model.ActivityTradingVolume, "fee_discount_3%"},
		{model.ActivitySubscribe, "staking_boost_10%"},
		{model.ActivityReferral, "referral_badge"},
		{model.ParseActivity("liquidity_mining"), "custom_badge"},
	}
	for _, tt := range tests {
		if got := RewardFor(tt.activity, model.TierBasic).Perks; got != tt.want {
			t.Errorf("%s: perks = %q, want %q", tt.activity, got, tt.want)
		}
	}
}

func TestRewardFor_UnknownActivityKeepsNumbers(t *testing.T) {
	custom := RewardFor(model.ActivityCustom, model.TierPro)
	known := RewardFor(model.ActivityTradingVolume, model.TierPro)
	if custom.VotingPower != known.VotingPower || custom.StakingBoostPct != known.StakingBoostPct || custom.FeeDiscountPct != known.FeeDiscountPct {
		t.Errorf("custom activity changed numeric rewards: %+v vs %+v", custom, known)
	}
}

func TestRewardFor_ClampsOutOfRange(t *testing.T) {
	if r := RewardFor(model.ActivityReferral, 7); r.Tier != model.TierElite {
		t.Errorf("tier 7 clamped to %d", r.Tier)
	}
	if r := RewardFor(model.ActivityReferral, -1); r.Tier != model.TierFree {
		t.Errorf("tier -1 clamped to %d", r.Tier)
	}
}

func TestTable_CoversEveryTier(t *testing.T) {
	if got := len(Table()); got != 16 {
		t.Fatalf("expected 16 rows, got %d", got)
	}
}
