// Package reward turns activity events into committed, encrypted on-chain reward records.
package reward

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"LiquiMind/internal/chain"
	"LiquiMind/internal/forge"
	"LiquiMind/internal/model"
	"LiquiMind/internal/recorder"
	"LiquiMind/internal/sealer"
)

// Forger produces committed metadata for one request.
type Forger interface {
	Forge(ctx context.Context, req forge.Request) (*model.NFTMetadata, error)
}

type cycleKey struct{}

// WithCycleID tags submissions made under ctx with a scheduling cycle id.
func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleKey{}, id)
}

// CycleID returns the cycle id attached by WithCycleID, or "".
func CycleID(ctx context.Context) string {
	id, _ := ctx.Value(cycleKey{}).(string)
	return id
}

type flightKey struct {
	wallet   string
	activity model.Activity
}

// Submitter forges, seals and records one reward per call. It makes at most
// one chain attempt per call and never retries.
type Submitter struct {
	forge   Forger
	sealer  sealer.Sealer
	chain   chain.Client
	signer  string
	timeout time.Duration
	rec     recorder.Recorder
	now     func() time.Time

	mu       sync.Mutex
	inflight map[flightKey]struct{}
}

// Config holds the submitter's signing identity and chain timeout.
type Config struct {
	Signer  string
	Timeout time.Duration
}

func NewSubmitter(f Forger, s sealer.Sealer, c chain.Client, rec recorder.Recorder, cfg Config) *Submitter {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Submitter{
		forge:    f,
		sealer:   s,
		chain:    c,
		signer:   cfg.Signer,
		timeout:  cfg.Timeout,
		rec:      rec,
		now:      time.Now,
		inflight: make(map[flightKey]struct{}),
	}
}

// Submit forges metadata for evt and logs the encrypted record on chain.
// A second Submit for the same (wallet, activity) while one is running
// fails fast with ErrSubmissionInFlight.
func (s *Submitter) Submit(ctx context.Context, evt model.ActivityEvent) (*model.NFTMetadata, error) {
	if evt.Wallet == "" {
		return nil, fmt.Errorf("%w: empty wallet", model.ErrSubmissionFailure)
	}
	key := flightKey{wallet: evt.Wallet, activity: evt.Activity}
	if !s.acquire(key) {
		return nil, fmt.Errorf("%s %s: %w", evt.Wallet, evt.Activity, model.ErrSubmissionInFlight)
	}
	defer s.release(key)

	meta, err := s.submit(ctx, evt)
	s.record(ctx, evt, meta, err)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *Submitter) submit(ctx context.Context, evt model.ActivityEvent) (*model.NFTMetadata, error) {
	meta, err := s.forge.Forge(ctx, forge.Request{
		Activity: evt.Activity,
		Tier:     evt.Tier,
		Wallet:   evt.Wallet,
		Course:   evt.Course,
	})
	if err != nil {
		return nil, fmt.Errorf("forge %s for %s: %w", evt.Activity, evt.Wallet, err)
	}
	if !meta.Committed() {
		return nil, fmt.Errorf("forge %s for %s: %w: metadata not committed", evt.Activity, evt.Wallet, model.ErrForgeFailure)
	}

	plaintext, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("%w: encode metadata: %w", model.ErrSubmissionFailure, err)
	}
	ciphertext, err := s.sealer.Seal(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: seal metadata: %w", model.ErrSubmissionFailure, err)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	args := TrackActivityArgs(evt, ciphertext)
	if _, err := s.chain.Call(callCtx, chain.ModuleRewardNFT, chain.FuncTrackActivity, args, s.signer); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, model.ErrCollaboratorUnavailable) {
			err = fmt.Errorf("%w: %w", model.ErrCollaboratorUnavailable, err)
		}
		return nil, fmt.Errorf("%w: track_activity %s for %s: %w", model.ErrSubmissionFailure, evt.Activity, evt.Wallet, err)
	}

	log.Printf("[INFO] reward committed: wallet=%s activity=%s tier=%d content=%s", evt.Wallet, evt.Activity, evt.Tier, meta.ContentID)
	return meta, nil
}

// TrackActivityArgs builds the track_activity argument list. The count is a
// decimal string since u64 volumes overflow JSON numbers.
func TrackActivityArgs(evt model.ActivityEvent, ciphertext []byte) []any {
	return []any{
		evt.Wallet,
		string(evt.Activity),
		strconv.FormatUint(evt.Count, 10),
		"0x" + hex.EncodeToString(ciphertext),
	}
}

func (s *Submitter) record(ctx context.Context, evt model.ActivityEvent, meta *model.NFTMetadata, err error) {
	rec := &recorder.SubmissionEvent{
		CycleID:  CycleID(ctx),
		Wallet:   evt.Wallet,
		Activity: evt.Activity,
		Count:    evt.Count,
		Tier:     evt.Tier,
		Status:   recorder.StatusCommitted,
		At:       s.now(),
	}
	if err != nil {
		rec.Status = recorder.StatusFailed
		rec.Error = err.Error()
	} else {
		rec.ContentID = meta.ContentID
	}
	if rerr := s.rec.RecordSubmission(rec); rerr != nil {
		log.Printf("[WARN] record submission: %v", rerr)
	}
}

func (s *Submitter) acquire(k flightKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[k]; busy {
		return false
	}
	s.inflight[k] = struct{}{}
	return true
}

func (s *Submitter) release(k flightKey) {
	s.mu.Lock()
	delete(s.inflight, k)
	s.mu.Unlock()
}
