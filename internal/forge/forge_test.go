package forge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"LiquiMind/internal/model"
	"LiquiMind/internal/storage"
)

type fixedGen struct {
	text    string
	err     error
	prompts []string
}

func (g *fixedGen) Name() string { return "fixed" }

func (g *fixedGen) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

type slowGen struct{}

func (slowGen) Name() string { return "slow" }

func (slowGen) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type failingStore struct{}

func (failingStore) Name() string { return "failing" }

func (failingStore) Put(context.Context, []byte) (string, error) {
	return "", errors.New("connection refused")
}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, model.ErrNotFound
}

func TestForge_CommittedMetadata(t *testing.T) {
	gen := &fixedGen{text: "  A rare trading trophy.\n"}
	f := New(gen, storage.NewMemoryStore(), Timeouts{})

	meta, err := f.Forge(context.Background(), Request{Activity: model.ActivityTradingVolume, Tier: model.TierBasic, Wallet: "0xW"})
	if err != nil {
		t.Fatal(err)
	}
	if !meta.Committed() {
		t.Fatal("expected committed metadata")
	}
	if meta.Name != "Trading Volume NFT" {
		t.Errorf("name = %q", meta.Name)
	}
	if meta.Description != "A rare trading trophy." {
		t.Errorf("description = %q", meta.Description)
	}
	if meta.Rarity != model.RarityRare || meta.VotingPower != 40 || meta.StakingBoost != 10 || meta.FeeDiscount != 3 {
		t.Errorf("unexpected rewards %+v", meta)
	}
	if meta.Perks != "fee_discount_3%" {
		t.Errorf("perks = %q", meta.Perks)
	}
	if len(gen.prompts) != 1 || gen.prompts[0] != "Create unique NFT metadata for trading_volume for user 0xW in tier 1" {
		t.Errorf("prompt = %v", gen.prompts)
	}
}

func TestForge_IdempotentContentID(t *testing.T) {
	store := storage.NewMemoryStore()
	f := New(&fixedGen{text: "same"}, store, Timeouts{})
	req := Request{Activity: model.ActivityReferral, Tier: model.TierPro, Wallet: "0xW"}

	a, err := f.Forge(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.Forge(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if a.ContentID != b.ContentID {
		t.Errorf("content ids differ: %s vs %s", a.ContentID, b.ContentID)
	}
	if store.Len() != 1 {
		t.Errorf("duplicate forge created %d artifacts", store.Len())
	}
}

func TestForge_StoredBytesAreCanonical(t *testing.T) {
	store := storage.NewMemoryStore()
	meta, err := New(&fixedGen{text: "d"}, store, Timeouts{}).Forge(context.Background(),
		Request{Activity: model.ActivityCompleteCourse, Tier: model.TierFree, Wallet: "0xW", Course: "DeFi 101"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := store.Get(context.Background(), meta.ContentID)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	if _, ok := fields["content_id"]; ok {
		t.Error("stored bytes must not contain the content id")
	}
	if len(fields) != 7 {
		t.Errorf("expected 7 fields, got %d: %v", len(fields), fields)
	}
	if !strings.HasPrefix(string(data), `{"name":"Complete Course NFT","description":"d","rarity":0`) {
		t.Errorf("unexpected encoding %s", data)
	}
}

func TestForge_EmptyDescriptionIsAccepted(t *testing.T) {
	meta, err := New(&fixedGen{text: ""}, storage.NewMemoryStore(), Timeouts{}).Forge(context.Background(),
		Request{Activity: model.ActivitySubscribe, Tier: model.TierElite, Wallet: "0xW"})
	if err != nil {
		t.Fatalf("low quality output must not fail the forge: %v", err)
	}
	if meta.Perks != "staking_boost_20%" {
		t.Errorf("perks = %q", meta.Perks)
	}
}

func TestForge_GeneratorFailure(t *testing.T) {
	f := New(&fixedGen{err: errors.New("model offline")}, storage.NewMemoryStore(), Timeouts{})
	meta, err := f.Forge(context.Background(), Request{Activity: model.ActivityReferral, Wallet: "0xW"})
	if meta != nil {
		t.Error("no metadata may be returned on failure")
	}
	if !errors.Is(err, model.ErrForgeFailure) || !errors.Is(err, model.ErrCollaboratorUnavailable) {
		t.Errorf("expected forge+unavailable error, got %v", err)
	}
}

func TestForge_GeneratorTimeout(t *testing.T) {
	f := New(slowGen{}, storage.NewMemoryStore(), Timeouts{Generate: 10 * time.Millisecond})
	_, err := f.Forge(context.Background(), Request{Activity: model.ActivityReferral, Wallet: "0xW"})
	if !errors.Is(err, model.ErrCollaboratorUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected timeout as unavailable, got %v", err)
	}
}

func TestForge_StorageFailure(t *testing.T) {
	f := New(&fixedGen{text: "x"}, failingStore{}, Timeouts{})
	meta, err := f.Forge(context.Background(), Request{Activity: model.ActivityReferral, Wallet: "0xW"})
	if meta != nil {
		t.Error("partial metadata returned")
	}
	if !errors.Is(err, model.ErrForgeFailure) || !errors.Is(err, model.ErrCollaboratorUnavailable) {
		t.Errorf("expected forge+unavailable error, got %v", err)
	}
}

func TestPrompt_CourseHint(t *testing.T) {
	p := Prompt(Request{Activity: model.ActivityCompleteCourse, Tier: model.TierPro, Wallet: "0xW", Course: "Move"})
	if !strings.Contains(p, `"Move"`) || !strings.Contains(p, "tier 2") {
		t.Errorf("prompt = %q", p)
	}
}
