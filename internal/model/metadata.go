package model

import "encoding/json"

// NFTMetadata is the reward artifact forged for one ActivityEvent.
// It is committed only once ContentID has been assigned by the content store.
type NFTMetadata struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Rarity       Rarity `json:"rarity"`
	Perks        string `json:"perks"`
	VotingPower  int    `json:"voting_power"`
	StakingBoost int    `json:"staking_boost"`
	FeeDiscount  int    `json:"fee_discount"`
	ContentID    string `json:"content_id,omitempty"`
}

// Committed reports whether the metadata has been anchored to storage.
func (m *NFTMetadata) Committed() bool {
	return m != nil && m.ContentID != ""
}

// CanonicalBytes is the byte encoding anchored to the content store.
// The content id is excluded so identical metadata always hashes the same.
func (m *NFTMetadata) CanonicalBytes() ([]byte, error) {
	c := *m
	c.ContentID = ""
	return json.Marshal(c)
}
