package strategy

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"LiquiMind/internal/model"
)

// Result is the outcome of one training job.
type Result struct {
	Policy *Policy
	Loss   float64
}

type job struct {
	policy *Policy
	rows   []model.TradeFeatures
	done   chan jobResult
}

type jobResult struct {
	res Result
	err error
}

// Trainer runs training jobs on one dedicated, OS-thread-locked goroutine
// so CPU-bound passes never run on a scheduler goroutine.
type Trainer struct {
	opts TrainOptions
	jobs chan job
	quit chan struct{}
	done chan struct{}
}

// NewTrainer starts the worker. Stop must be called to release it.
func NewTrainer(opts TrainOptions) *Trainer {
	t := &Trainer{
		opts: opts,
		jobs: make(chan job),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *Trainer) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.done)

	for {
		select {
		case <-t.quit:
			return
		case j := <-t.jobs:
			j.done <- t.run(j)
		}
	}
}

func (t *Trainer) run(j job) (out jobResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] trainer panic: %v", r)
			out = jobResult{err: fmt.Errorf("%w: panic: %v", model.ErrTrainingFailure, r)}
		}
	}()

	candidate := j.policy.Clone()
	loss, err := candidate.Train(j.rows, t.opts)
	if err != nil {
		return jobResult{err: err}
	}
	candidate.Version = j.policy.Version + 1
	return jobResult{res: Result{Policy: candidate, Loss: loss}}
}

// Train submits a pass over rows on a clone of p and waits for it. p is
// never modified. The returned policy carries the next version.
func (t *Trainer) Train(ctx context.Context, p *Policy, rows []model.TradeFeatures) (Result, error) {
	j := job{policy: p.Clone(), rows: rows, done: make(chan jobResult, 1)}

	select {
	case t.jobs <- j:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-t.quit:
		return Result{}, fmt.Errorf("%w: trainer stopped", model.ErrTrainingFailure)
	}

	select {
	case r := <-j.done:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Stop ends the worker after any running job.
func (t *Trainer) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
	<-t.done
}
