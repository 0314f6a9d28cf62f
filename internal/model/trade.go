package model

import "time"

// TradeEvent is a projected TradeExecutedEvent.
type TradeEvent struct {
	Pair      string    `json:"pair"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// TradeFeatures is the feature row the trading policy consumes.
type TradeFeatures struct {
	Pair       string
	Values     []float64
	Label      float64 // +1 if the next trade amount grew, -1 otherwise
	ObservedAt time.Time
}

// FeatureCount is the width of TradeFeatures.Values.
const FeatureCount = 5
