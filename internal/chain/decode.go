package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"LiquiMind/internal/model"
)

// DecodeSubscription decodes the get_subscription view result, a
// (tier, expiry, cost) tuple. Move u64 values may arrive as strings.
func DecodeSubscription(raw json.RawMessage) (model.SubscriptionState, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(raw, &tuple); err != nil {
		return model.SubscriptionState{}, fmt.Errorf("decode subscription: %w", err)
	}
	if len(tuple) < 2 {
		return model.SubscriptionState{}, fmt.Errorf("decode subscription: expected at least 2 values, got %d", len(tuple))
	}
	tier, err := decodeUint(tuple[0])
	if err != nil {
		return model.SubscriptionState{}, fmt.Errorf("decode subscription tier: %w", err)
	}
	expiry, err := decodeUint(tuple[1])
	if err != nil {
		return model.SubscriptionState{}, fmt.Errorf("decode subscription expiry: %w", err)
	}
	state := model.SubscriptionState{
		Tier:   decodeTier(tier),
		Expiry: decodeExpiry(expiry),
	}
	if len(tuple) > 2 {
		state.Cost = decodeString(tuple[2])
	}
	return state, nil
}

// decodeTier clamps tiers above the catalog to the highest one.
func decodeTier(v uint64) model.Tier {
	if v > uint64(model.MaxTier) {
		return model.MaxTier
	}
	return model.Tier(v)
}

// decodeExpiry maps a u64 unix timestamp onto time.Time. Values past
// NeverExpires, such as u64::MAX, would overflow int64 seconds and are clamped.
func decodeExpiry(v uint64) time.Time {
	if v > uint64(model.NeverExpires.Unix()) {
		return model.NeverExpires
	}
	return time.Unix(int64(v), 0)
}

// decodeUint accepts a JSON number or a decimal string.
func decodeUint(raw json.RawMessage) (uint64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseUint(s, 10, 64)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return strconv.ParseUint(n.String(), 10, 64)
}

func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
