// Package strategy holds the trading policy and the worker that trains it.
package strategy

import (
	"fmt"
	"math"
	"time"

	"LiquiMind/internal/model"
)

// Policy is a logistic scorer over TradeFeatures.Values.
type Policy struct {
	Weights []float64
	Bias    float64
	Version int
	Samples int
}

// NewPolicy returns an untrained policy of the given width.
func NewPolicy(width int) *Policy {
	return &Policy{Weights: make([]float64, width)}
}

// FromCheckpoint restores a policy. A checkpoint of the wrong width is rejected.
func FromCheckpoint(cp model.PolicyCheckpoint) (*Policy, error) {
	if len(cp.Weights) != model.FeatureCount {
		return nil, fmt.Errorf("checkpoint v%d has %d weights, want %d", cp.Version, len(cp.Weights), model.FeatureCount)
	}
	return &Policy{
		Weights: append([]float64(nil), cp.Weights...),
		Bias:    cp.Bias,
		Version: cp.Version,
		Samples: cp.Samples,
	}, nil
}

// Checkpoint snapshots the policy.
func (p *Policy) Checkpoint(at time.Time) *model.PolicyCheckpoint {
	return &model.PolicyCheckpoint{
		Version:   p.Version,
		CreatedAt: at,
		Samples:   p.Samples,
		Weights:   append([]float64(nil), p.Weights...),
		Bias:      p.Bias,
	}
}

// Clone returns a deep copy; training always runs on a clone.
func (p *Policy) Clone() *Policy {
	c := *p
	c.Weights = append([]float64(nil), p.Weights...)
	return &c
}

// Score returns the probability that the next trade on the pair grows.
func (p *Policy) Score(values []float64) float64 {
	z := p.Bias
	for i, w := range p.Weights {
		if i < len(values) {
			z += w * values[i]
		}
	}
	return sigmoid(z)
}

// TrainOptions controls a training pass.
type TrainOptions struct {
	LearningRate float64
	Epochs       int
}

// DefaultTrainOptions is one SGD pass.
var DefaultTrainOptions = TrainOptions{LearningRate: 0.05, Epochs: 1}

// Train runs SGD over rows in order and returns the mean log loss of the
// last epoch. The receiver is modified; callers train a Clone.
func (p *Policy) Train(rows []model.TradeFeatures, opts TrainOptions) (float64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: no training rows", model.ErrTrainingFailure)
	}
	if opts.Epochs <= 0 {
		opts.Epochs = 1
	}

	var loss float64
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		loss = 0
		for i, row := range rows {
			if len(row.Values) != len(p.Weights) {
				return 0, fmt.Errorf("%w: row %d has %d features, want %d", model.ErrTrainingFailure, i, len(row.Values), len(p.Weights))
			}
			y := 0.0
			if row.Label > 0 {
				y = 1
			}
			pred := p.Score(row.Values)
			grad := pred - y
			for j, v := range row.Values {
				p.Weights[j] -= opts.LearningRate * grad * v
			}
			p.Bias -= opts.LearningRate * grad
			loss += logLoss(pred, y)
		}
		loss /= float64(len(rows))
	}

	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0, fmt.Errorf("%w: loss diverged", model.ErrTrainingFailure)
	}
	p.Samples += len(rows)
	return loss, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func logLoss(pred, y float64) float64 {
	const eps = 1e-12
	pred = math.Min(math.Max(pred, eps), 1-eps)
	return -(y*math.Log(pred) + (1-y)*math.Log(1-pred))
}
