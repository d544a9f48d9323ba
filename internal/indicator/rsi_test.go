package indicator

import (
	"math"
	"testing"
)

func TestRSI_AllGains(t *testing.T) {
	// Strictly rising closes: zero average loss resolves to RSI 100.
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	result := RSI(closes, 3)

	for i := 0; i < 3; i++ {
		if !IsMissing(result[i]) {
			t.Errorf("result[%d] = %v, want Missing", i, result[i])
		}
	}
	for i := 3; i < len(closes); i++ {
		if result[i] != 100 {
			t.Errorf("result[%d] = %v, want 100", i, result[i])
		}
	}
}

func TestRSI_AllLosses(t *testing.T) {
	closes := []float64{8, 7, 6, 5, 4, 3}
	result := RSI(closes, 3)

	for i := 3; i < len(closes); i++ {
		if result[i] != 0 {
			t.Errorf("result[%d] = %v, want 0", i, result[i])
		}
	}
}

func TestRSI_Balanced(t *testing.T) {
	// Alternating +1/-1 deltas over an even window: avg gain == avg loss,
	// RS = 1, RSI = 50.
	closes := []float64{10, 11, 10, 11, 10, 11, 10}
	result := RSI(closes, 4)

	for i := 4; i < len(closes); i++ {
		if math.Abs(result[i]-50) > 1e-9 {
			t.Errorf("result[%d] = %v, want 50", i, result[i])
		}
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	result := RSI([]float64{1, 2, 3}, 14)
	for i, v := range result {
		if !IsMissing(v) {
			t.Errorf("result[%d] = %v, want Missing", i, v)
		}
	}
}

func TestRSI_Causality(t *testing.T) {
	closes := []float64{10, 12, 11, 14, 13, 17, 16, 15, 18, 20, 19, 21}
	full := RSI(closes, 4)
	truncated := RSI(closes[:8], 4)

	for i := 0; i < 8; i++ {
		if IsMissing(full[i]) != IsMissing(truncated[i]) {
			t.Fatalf("missing state differs at %d", i)
		}
		if !IsMissing(full[i]) && math.Abs(full[i]-truncated[i]) > 1e-9 {
			t.Errorf("value at %d changed when future truncated", i)
		}
	}
}
