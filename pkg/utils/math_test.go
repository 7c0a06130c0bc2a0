package utils

import (
	"math"
	"testing"
)

func TestLogPopularity(t *testing.T) {
	if LogPopularity(0) != 0 || LogPopularity(-5) != 0 || LogPopularity(1) != 0 {
		t.Error("non-positive and unit enrollment should score zero")
	}
	if got := LogPopularity(100); math.Abs(got-math.Log(100)) > 1e-12 {
		t.Errorf("LogPopularity(100) = %v", got)
	}
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax([]float64{3, -1, 7, 2})
	if lo != -1 || hi != 7 {
		t.Errorf("MinMax = %v, %v", lo, hi)
	}
	lo, hi = MinMax(nil)
	if lo != 0 || hi != 0 {
		t.Errorf("empty MinMax = %v, %v", lo, hi)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   float64
	}{
		{3.14159, 2, 3.14},
		{2.675, 1, 2.7},
		{66.66666, 1, 66.7},
		{-1.005, 0, -1},
	}
	for _, tt := range tests {
		if got := Round(tt.x, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
		}
	}
}
