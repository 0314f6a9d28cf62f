// Package forge builds content-addressed NFT metadata for activity events.
package forge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"LiquiMind/internal/generator"
	"LiquiMind/internal/model"
	"LiquiMind/internal/storage"
	"LiquiMind/internal/tier"
)

// Request is one forge input.
type Request struct {
	Activity model.Activity
	Tier     model.Tier
	Wallet   string
	// Course is an optional prompt hint for course rewards.
	Course string
}

// Timeouts bounds each collaborator call made while forging.
type Timeouts struct {
	Generate time.Duration
	Store    time.Duration
}

// Forge turns a Request into committed metadata.
type Forge struct {
	gen      generator.Generator
	store    storage.Store
	timeouts Timeouts
}

func New(gen generator.Generator, store storage.Store, timeouts Timeouts) *Forge {
	return &Forge{gen: gen, store: store, timeouts: timeouts}
}

// Prompt is the natural-language request sent to the generator.
func Prompt(req Request) string {
	p := fmt.Sprintf("Create unique NFT metadata for %s for user %s in tier %d", req.Activity, req.Wallet, req.Tier)
	if req.Course != "" {
		p += fmt.Sprintf(" who completed the course %q", req.Course)
	}
	return p
}

// Build assembles uncommitted metadata from a description. It is the only
// place metadata fields are derived from the tier catalog.
func Build(req Request, description string) *model.NFTMetadata {
	reward := tier.RewardFor(req.Activity, req.Tier)
	return &model.NFTMetadata{
		Name:         req.Activity.Title() + " NFT",
		Description:  strings.TrimSpace(description),
		Rarity:       reward.Rarity,
		Perks:        reward.Perks,
		VotingPower:  reward.VotingPower,
		StakingBoost: reward.StakingBoostPct,
		FeeDiscount:  reward.FeeDiscountPct,
	}
}

// Forge generates, assembles and anchors metadata. It never returns
// metadata without a content id.
func (f *Forge) Forge(ctx context.Context, req Request) (*model.NFTMetadata, error) {
	description, err := f.describe(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: generate description: %w", model.ErrForgeFailure, err)
	}
	return f.Anchor(ctx, Build(req, description))
}

// Anchor stores the canonical bytes of meta and returns a committed copy.
func (f *Forge) Anchor(ctx context.Context, meta *model.NFTMetadata) (*model.NFTMetadata, error) {
	data, err := meta.CanonicalBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: encode metadata: %w", model.ErrForgeFailure, err)
	}

	putCtx, cancel := withTimeout(ctx, f.timeouts.Store)
	defer cancel()
	id, err := f.store.Put(putCtx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: store metadata: %w", model.ErrForgeFailure, unavailable(err))
	}
	if id == "" {
		return nil, fmt.Errorf("%w: store returned empty content id", model.ErrForgeFailure)
	}

	committed := *meta
	committed.ContentID = id
	return &committed, nil
}

func (f *Forge) describe(ctx context.Context, req Request) (string, error) {
	genCtx, cancel := withTimeout(ctx, f.timeouts.Generate)
	defer cancel()
	text, err := f.gen.Generate(genCtx, Prompt(req))
	if err != nil {
		return "", unavailable(err)
	}
	return text, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// unavailable tags deadline and network failures as collaborator unavailability.
func unavailable(err error) error {
	if errors.Is(err, model.ErrCollaboratorUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrCollaboratorUnavailable, err)
}
