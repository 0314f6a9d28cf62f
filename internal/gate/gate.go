// Package gate decides whether a wallet's subscription allows it to earn rewards.
package gate

import (
	"context"
	"fmt"
	"time"

	"LiquiMind/internal/chain"
	"LiquiMind/internal/model"
)

// Decision is the outcome of one eligibility check.
type Decision struct {
	Eligible     bool
	Subscription model.SubscriptionState
	CheckedAt    time.Time
}

// Gate reads subscription state fresh from the chain on every call.
// It keeps no cache.
type Gate struct {
	chain   chain.Client
	timeout time.Duration
	now     func() time.Time
}

func New(c chain.Client, timeout time.Duration) *Gate {
	return &Gate{chain: c, timeout: timeout, now: time.Now}
}

// WithClock replaces the clock used for expiry comparisons.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// IsEligible reports whether wallet may earn rewards now.
func (g *Gate) IsEligible(ctx context.Context, wallet string) (bool, error) {
	d, err := g.Check(ctx, wallet)
	if err != nil {
		return false, err
	}
	return d.Eligible, nil
}

// Check reads the subscription and returns the full decision.
// Any chain or decode failure is an ErrStaleOrMissingSubscription, never a default.
func (g *Gate) Check(ctx context.Context, wallet string) (Decision, error) {
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	raw, err := g.chain.Call(callCtx, chain.ModuleSubscription, chain.FuncGetSubscription, []any{wallet}, "")
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %s: %w", model.ErrStaleOrMissingSubscription, wallet, err)
	}
	sub, err := chain.DecodeSubscription(raw)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %s: %w", model.ErrStaleOrMissingSubscription, wallet, err)
	}

	now := g.now()
	return Decision{
		Eligible:     sub.ActiveAt(now),
		Subscription: sub,
		CheckedAt:    now,
	}, nil
}
