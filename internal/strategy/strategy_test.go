package strategy

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"LiquiMind/internal/model"
)

func separable(n int) []model.TradeFeatures {
	rows := make([]model.TradeFeatures, 0, n)
	for i := 0; i < n; i++ {
		label, x := 1.0, 1.0
		if i%2 == 1 {
			label, x = -1, -1
		}
		rows = append(rows, model.TradeFeatures{
			Pair:       "SUPRA/USDT",
			Values:     []float64{x, 0, 0, 0, 0},
			Label:      label,
			ObservedAt: time.Unix(int64(i), 0),
		})
	}
	return rows
}

func TestTrain_ReducesLoss(t *testing.T) {
	p := NewPolicy(model.FeatureCount)
	rows := separable(200)

	first, err := p.Clone().Train(rows, TrainOptions{LearningRate: 0.1, Epochs: 1})
	if err != nil {
		t.Fatal(err)
	}
	later, err := p.Train(rows, TrainOptions{LearningRate: 0.1, Epochs: 10})
	if err != nil {
		t.Fatal(err)
	}
	if later >= first {
		t.Errorf("loss did not decrease: first=%.4f later=%.4f", first, later)
	}
	if p.Score([]float64{1, 0, 0, 0, 0}) <= 0.5 || p.Score([]float64{-1, 0, 0, 0, 0}) >= 0.5 {
		t.Error("policy did not learn the separating feature")
	}
	if p.Samples != 200 {
		t.Errorf("samples = %d", p.Samples)
	}
}

func TestTrain_Failures(t *testing.T) {
	p := NewPolicy(model.FeatureCount)
	if _, err := p.Train(nil, DefaultTrainOptions); !errors.Is(err, model.ErrTrainingFailure) {
		t.Errorf("empty rows: %v", err)
	}
	bad := []model.TradeFeatures{{Values: []float64{1, 2}}}
	if _, err := p.Train(bad, DefaultTrainOptions); !errors.Is(err, model.ErrTrainingFailure) {
		t.Errorf("width mismatch: %v", err)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	p := &Policy{Weights: []float64{1, 2, 3, 4, 5}, Bias: -1, Version: 4, Samples: 10}
	cp := p.Checkpoint(time.Unix(1, 0))
	cp.Weights[0] = 42
	if p.Weights[0] != 1 {
		t.Error("checkpoint shares weights with the policy")
	}

	q, err := FromCheckpoint(*p.Checkpoint(time.Unix(1, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if q.Version != 4 || q.Bias != -1 || q.Weights[4] != 5 {
		t.Errorf("restored = %+v", q)
	}

	if _, err := FromCheckpoint(model.PolicyCheckpoint{Weights: []float64{1}}); err == nil {
		t.Error("expected width error")
	}
}

func TestEvaluate_LatestRowPerPair(t *testing.T) {
	p := &Policy{Weights: []float64{10, 0, 0, 0, 0}}
	rows := []model.TradeFeatures{
		{Pair: "B", Values: []float64{-1, 0, 0, 0, 0}, ObservedAt: time.Unix(1, 0)},
		{Pair: "B", Values: []float64{1, 0, 0, 0, 0}, ObservedAt: time.Unix(2, 0)},
		{Pair: "A", Values: []float64{0, 0, 0, 0, 0}, ObservedAt: time.Unix(1, 0)},
		{Pair: "C", Values: []float64{-1, 0, 0, 0, 0}, ObservedAt: time.Unix(1, 0)},
	}
	signals := Evaluate(p, rows)
	want := []struct {
		pair   string
		action Action
	}{
		{"A", ActionHold},
		{"B", ActionAccumulate},
		{"C", ActionReduce},
	}
	if len(signals) != len(want) {
		t.Fatalf("got %d signals", len(signals))
	}
	for i, w := range want {
		if signals[i].Pair != w.pair || signals[i].Action != w.action {
			t.Errorf("signal %d = %+v, want %s %s", i, signals[i], w.pair, w.action)
		}
	}
}

func TestMapAction_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Action
	}{
		{0.99, ActionAccumulate},
		{0.6, ActionAccumulate},
		{0.59, ActionHold},
		{0.4, ActionHold},
		{0.39, ActionReduce},
		{0, ActionReduce},
	}
	for _, tt := range tests {
		if got := mapAction(tt.score); got != tt.want {
			t.Errorf("mapAction(%.2f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestTrainer_ClonesAndVersions(t *testing.T) {
	tr := NewTrainer(DefaultTrainOptions)
	defer tr.Stop()

	p := &Policy{Weights: make([]float64, model.FeatureCount), Version: 2}
	res, err := tr.Train(context.Background(), p, separable(10))
	if err != nil {
		t.Fatal(err)
	}
	if res.Policy.Version != 3 {
		t.Errorf("version = %d, want 3", res.Policy.Version)
	}
	for _, w := range p.Weights {
		if w != 0 {
			t.Fatal("input policy was modified")
		}
	}
	if math.IsNaN(res.Loss) || res.Loss <= 0 {
		t.Errorf("loss = %v", res.Loss)
	}
}

func TestTrainer_FailureAndStop(t *testing.T) {
	tr := NewTrainer(DefaultTrainOptions)
	p := NewPolicy(model.FeatureCount)
	if _, err := tr.Train(context.Background(), p, nil); !errors.Is(err, model.ErrTrainingFailure) {
		t.Errorf("expected training failure, got %v", err)
	}
	tr.Stop()
	tr.Stop()
	if _, err := tr.Train(context.Background(), p, separable(2)); !errors.Is(err, model.ErrTrainingFailure) {
		t.Errorf("expected stopped trainer error, got %v", err)
	}
}
