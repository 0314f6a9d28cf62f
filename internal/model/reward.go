package model

import "fmt"

// Tier is the subscription level, 0 (free) to 3.
type Tier int

const (
	TierFree Tier = iota
	TierBasic
	TierPro
	TierElite
)

// MaxTier is the highest defined tier.
const MaxTier = TierElite

// Rarity is the NFT classification, derived 1:1 from Tier.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityLegendary
	RarityMythic
)

func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityLegendary:
		return "Legendary"
	case RarityMythic:
		return "Mythic"
	default:
		return fmt.Sprintf("Rarity(%d)", int(r))
	}
}

// RewardTier holds the reward economics for one (activity, tier) pair.
type RewardTier struct {
	Tier            Tier
	Rarity          Rarity
	VotingPower     int
	StakingBoostPct int
	FeeDiscountPct  int
	Perks           string
}
