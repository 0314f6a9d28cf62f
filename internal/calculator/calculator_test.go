package calculator

import (
	"math"
	"testing"
)

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3.5 {
		t.Errorf("SMA = %v, want 3.5", got)
	}
	if _, err := CalculateSMA([]float64{1}, 2); err == nil {
		t.Error("expected error for short series")
	}
	if _, err := CalculateSMA([]float64{1}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestCalculateRSI(t *testing.T) {
	rising := []float64{1, 2, 3, 4, 5, 6}
	if rsi, _ := CalculateRSI(rising, 3); rsi != 100 {
		t.Errorf("rising RSI = %v, want 100", rsi)
	}
	if rsi, _ := CalculateRSI([]float64{1, 2}, 14); rsi != 50 {
		t.Errorf("short series RSI = %v, want 50", rsi)
	}
	falling := []float64{6, 5, 4, 3, 2, 1}
	if rsi, _ := CalculateRSI(falling, 3); rsi != 0 {
		t.Errorf("falling RSI = %v, want 0", rsi)
	}
}

func TestWindowRangeAndPosition(t *testing.T) {
	high, low, err := WindowRange([]float64{9, 1, 5, 3}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if high != 5 || low != 1 {
		t.Errorf("range = %v/%v, want 5/1", high, low)
	}
	pos, _ := Position(3, high, low)
	if math.Abs(pos-0.5) > 1e-9 {
		t.Errorf("position = %v, want 0.5", pos)
	}
	if pos, _ := Position(2, 2, 2); pos != 0.5 {
		t.Errorf("flat range position = %v", pos)
	}
	if _, err := Position(1, 0, 2); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestDeviation(t *testing.T) {
	if d := Deviation(110, 100); math.Abs(d-0.1) > 1e-9 {
		t.Errorf("deviation = %v", d)
	}
	if Deviation(5, 0) != 0 {
		t.Error("zero mean must yield 0")
	}
}
