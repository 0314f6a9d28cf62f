package model

import "time"

// PolicyCheckpoint is the persisted snapshot of the trading policy.
type PolicyCheckpoint struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Samples   int       `json:"samples"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
}
