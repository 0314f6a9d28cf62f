package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"time"

	"LiquiMind/internal/calculator"
	"LiquiMind/internal/chain"
	"LiquiMind/internal/model"
)

const (
	smaPeriod   = 5
	rsiPeriod   = 14
	rangeWindow = 20
)

// TradeCollector pulls recent trade events from the chain and projects them
// into the feature rows the trading policy consumes.
type TradeCollector struct {
	Chain   chain.Client
	Limit   int
	Timeout time.Duration
}

// NewTradeCollector creates a collector for the last limit trades.
func NewTradeCollector(c chain.Client, limit int, timeout time.Duration) *TradeCollector {
	return &TradeCollector{Chain: c, Limit: limit, Timeout: timeout}
}

// Collect queries the chain and returns feature rows, oldest first per pair.
func (c *TradeCollector) Collect(ctx context.Context) ([]model.TradeFeatures, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	raw, err := c.Chain.Query(ctx, chain.EventTradeExecuted, c.Limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	events := make([]model.TradeEvent, 0, len(raw))
	for _, r := range raw {
		ev, err := DecodeTrade(r)
		if err != nil {
			log.Printf("[WARN] skipping malformed trade event: %v", err)
			continue
		}
		events = append(events, ev)
	}
	return Project(events), nil
}

type rawTrade struct {
	Pair      string          `json:"pair"`
	Amount    json.RawMessage `json:"amount"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// DecodeTrade decodes one TradeExecutedEvent. Numeric fields may be strings.
func DecodeTrade(raw json.RawMessage) (model.TradeEvent, error) {
	var rt rawTrade
	if err := json.Unmarshal(raw, &rt); err != nil {
		return model.TradeEvent{}, fmt.Errorf("decode trade: %w", err)
	}
	if rt.Pair == "" {
		return model.TradeEvent{}, fmt.Errorf("decode trade: missing pair")
	}
	amount, err := decodeFloat(rt.Amount)
	if err != nil {
		return model.TradeEvent{}, fmt.Errorf("decode trade amount: %w", err)
	}
	ts, err := decodeFloat(rt.Timestamp)
	if err != nil {
		return model.TradeEvent{}, fmt.Errorf("decode trade timestamp: %w", err)
	}
	return model.TradeEvent{
		Pair:      rt.Pair,
		Amount:    amount,
		Timestamp: time.Unix(int64(ts), 0),
	}, nil
}

func decodeFloat(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing value")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	err := json.Unmarshal(raw, &f)
	return f, err
}

// Project groups trades by pair and builds one labelled feature row for every
// trade that has a successor. The label is +1 when the next amount grew.
func Project(events []model.TradeEvent) []model.TradeFeatures {
	byPair := make(map[string][]model.TradeEvent)
	for _, ev := range events {
		byPair[ev.Pair] = append(byPair[ev.Pair], ev)
	}
	pairs := make([]string, 0, len(byPair))
	for p := range byPair {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)

	var rows []model.TradeFeatures
	for _, pair := range pairs {
		trades := byPair[pair]
		sort.SliceStable(trades, func(i, j int) bool { return trades[i].Timestamp.Before(trades[j].Timestamp) })
		amounts := make([]float64, len(trades))
		for i, t := range trades {
			amounts[i] = t.Amount
		}
		for i := 0; i+1 < len(trades); i++ {
			label := -1.0
			if amounts[i+1] > amounts[i] {
				label = 1.0
			}
			rows = append(rows, model.TradeFeatures{
				Pair:       pair,
				Values:     featuresAt(amounts[:i+1], trades, i),
				Label:      label,
				ObservedAt: trades[i].Timestamp,
			})
		}
	}
	return rows
}

// featuresAt computes the feature vector for trade i from the history up to it.
func featuresAt(history []float64, trades []model.TradeEvent, i int) []float64 {
	current := history[len(history)-1]

	period := smaPeriod
	if len(history) < period {
		period = len(history)
	}
	deviation := 0.0
	if sma, err := calculator.CalculateSMA(history, period); err == nil {
		deviation = calculator.Deviation(current, sma)
	}

	rsi, err := calculator.CalculateRSI(history, rsiPeriod)
	if err != nil {
		rsi = 50
	}

	position := 0.5
	if high, low, err := calculator.WindowRange(history, rangeWindow); err == nil {
		if p, err := calculator.Position(current, high, low); err == nil {
			position = p
		}
	}

	gap := 0.0
	if i > 0 {
		gap = math.Tanh(trades[i].Timestamp.Sub(trades[i-1].Timestamp).Hours())
	}

	return []float64{
		math.Tanh(deviation),
		rsi/100 - 0.5,
		position - 0.5,
		math.Log1p(math.Max(current, 0)) / 20,
		gap,
	}
}
