package strategy

import (
	"sort"

	"LiquiMind/internal/model"
)

// Action is the policy's recommendation for a pair.
type Action string

const (
	ActionAccumulate Action = "ACCUMULATE"
	ActionHold       Action = "HOLD"
	ActionReduce     Action = "REDUCE"
)

// Actions maps a score to an action, highest threshold first.
var Actions = []struct {
	MinScore float64
	Action   Action
}{
	{0.6, ActionAccumulate},
	{0.4, ActionHold},
}

// DefaultAction applies below every threshold.
const DefaultAction = ActionReduce

func mapAction(score float64) Action {
	for _, a := range Actions {
		if score >= a.MinScore {
			return a.Action
		}
	}
	return DefaultAction
}

// Signal is the policy's view of one pair at its latest observation.
type Signal struct {
	Pair   string
	Score  float64
	Action Action
}

// Evaluate scores the latest feature row of every pair.
func Evaluate(p *Policy, rows []model.TradeFeatures) []Signal {
	latest := make(map[string]model.TradeFeatures)
	for _, r := range rows {
		if cur, ok := latest[r.Pair]; !ok || r.ObservedAt.After(cur.ObservedAt) {
			latest[r.Pair] = r
		}
	}

	signals := make([]Signal, 0, len(latest))
	for pair, r := range latest {
		score := p.Score(r.Values)
		signals = append(signals, Signal{Pair: pair, Score: score, Action: mapAction(score)})
	}
	sort.Slice(signals, func(i, j int) bool { return signals[i].Pair < signals[j].Pair })
	return signals
}
