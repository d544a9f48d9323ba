package indicator

import (
	"errors"
	"testing"
	"time"

	"github.com/quantprim/prism/internal/core"
)

func testBars(n int) []core.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = core.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1,
		}
	}
	return bars
}

func TestCompute(t *testing.T) {
	bars := testBars(60)
	f, err := Compute(bars, Config{FastPeriod: 5, SlowPeriod: 20, TrendPeriod: 20, RSIPeriod: 14})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	for _, name := range []string{SeriesFastSMA, SeriesSlowSMA, SeriesTrendSMA, SeriesRSI} {
		s, ok := f.Get(name)
		if !ok {
			t.Fatalf("series %q missing from frame", name)
		}
		if len(s) != len(bars) {
			t.Errorf("series %q length = %d, want %d", name, len(s), len(bars))
		}
	}

	if _, ok := f.Value(SeriesSlowSMA, 10); ok {
		t.Error("slow SMA at position 10 should still be missing")
	}
	if _, ok := f.Value(SeriesSlowSMA, 19); !ok {
		t.Error("slow SMA at position 19 should be present")
	}
}

func TestCompute_FastNotBelowSlow(t *testing.T) {
	_, err := Compute(testBars(60), Config{FastPeriod: 50, SlowPeriod: 20, TrendPeriod: 50, RSIPeriod: 14})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("error = %v, want CONFIG_INVALID", err)
	}
}

func TestFrame_SetLengthMismatch(t *testing.T) {
	f := NewFrame(10)
	err := f.Set("x", []float64{1, 2, 3})
	if !errors.Is(err, core.ErrDataInvalid) {
		t.Errorf("error = %v, want DATA_INVALID", err)
	}
}

func TestBollinger(t *testing.T) {
	values := []float64{2, 4, 6, 8, 10, 12}
	bands := Bollinger(values, 3, 2)

	if !IsMissing(bands.Upper[1]) {
		t.Error("warm-up band values should be Missing")
	}
	// Window {2,4,6}: mean 4, sample std 2, k=2 => upper 8, lower 0.
	if bands.Middle[2] != 4 {
		t.Errorf("Middle[2] = %v, want 4", bands.Middle[2])
	}
	if bands.Upper[2] != 8 {
		t.Errorf("Upper[2] = %v, want 8", bands.Upper[2])
	}
	if bands.Lower[2] != 0 {
		t.Errorf("Lower[2] = %v, want 0", bands.Lower[2])
	}
}
