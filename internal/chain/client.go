// Package chain adapts the Supra chain gateway to the typed call/query primitives the core needs.
package chain

import (
	"context"
	"encoding/json"
)

// Move entry points used by the core.
const (
	ModuleSubscription = "LiquiMind::Subscription"
	ModuleRewardNFT    = "LiquiMind::RewardNFT"

	FuncGetSubscription = "get_subscription"
	FuncTrackActivity   = "track_activity"

	EventTradeExecuted = "TradeExecutedEvent"
)

// Client is the chain collaborator. Implementations must be safe for concurrent use.
// Signing, connection handling and RPC retry belong to the implementation.
type Client interface {
	Call(ctx context.Context, module, function string, args []any, signer string) (json.RawMessage, error)
	Query(ctx context.Context, eventType string, limit int) ([]json.RawMessage, error)
}
