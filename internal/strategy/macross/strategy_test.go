package macross

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/indicator"
)

func barsFromCloses(closes ...float64) []core.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, len(closes))
	for i, c := range closes {
		bars[i] = core.Bar{
			Time: start.Add(time.Duration(i) * 24 * time.Hour),
			Open: c, High: c, Low: c, Close: c, Volume: 1,
		}
	}
	return bars
}

func frameFor(t *testing.T, bars []core.Bar, fast, slow int) *indicator.Frame {
	t.Helper()
	frame, err := indicator.Compute(bars, indicator.Config{
		FastPeriod: fast, SlowPeriod: slow, TrendPeriod: slow, RSIPeriod: 2,
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return frame
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name       string
		fast, slow int
	}{
		{"zero fast", 0, 10},
		{"negative slow", 5, -1},
		{"fast equals slow", 10, 10},
		{"fast above slow", 20, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fast, tt.slow, false)
			if !errors.Is(err, core.ErrConfigInvalid) {
				t.Errorf("New(%d, %d) error = %v, want CONFIG_INVALID", tt.fast, tt.slow, err)
			}
		})
	}
}

func TestSignals_CrossoverTransitions(t *testing.T) {
	bars := barsFromCloses(10, 10, 10, 20, 20, 20, 5, 5, 5)
	frame := frameFor(t, bars, 2, 3)

	rule, err := New(2, 3, false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if rule.Warmup() != 2 {
		t.Fatalf("Warmup() = %d, want 2", rule.Warmup())
	}

	signals, err := rule.Signals(context.Background(), bars, frame)
	if err != nil {
		t.Fatalf("Signals() error = %v", err)
	}

	want := []core.State{
		core.StateFlat, // fast 10 == slow 10
		core.StateLong, // fast 15 > slow 13.33
		core.StateLong,
		core.StateFlat, // fast 20 == slow 20
		core.StateFlat,
		core.StateFlat,
		core.StateFlat,
	}
	if len(signals) != len(want) {
		t.Fatalf("got %d signals, want %d", len(signals), len(want))
	}
	for i, w := range want {
		if signals[i].State != w {
			t.Errorf("signal %d state = %v, want %v", i, signals[i].State, w)
		}
	}

	// Reasons annotate the first signal and each transition only.
	if signals[0].Reason == "" {
		t.Error("first signal has no reason")
	}
	if signals[1].Reason == "" {
		t.Error("flat->long transition has no reason")
	}
	if signals[2].Reason != "" {
		t.Errorf("steady-state signal has reason %q", signals[2].Reason)
	}
	if signals[3].Reason == "" {
		t.Error("long->flat transition has no reason")
	}
}

func TestSignals_AllowShort(t *testing.T) {
	bars := barsFromCloses(10, 10, 10, 20, 20, 20, 5, 5, 5)
	frame := frameFor(t, bars, 2, 3)

	rule, err := New(2, 3, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	signals, err := rule.Signals(context.Background(), bars, frame)
	if err != nil {
		t.Fatalf("Signals() error = %v", err)
	}

	if signals[0].State != core.StateShort {
		t.Errorf("below state = %v, want short when shorting is allowed", signals[0].State)
	}
	if signals[1].State != core.StateLong {
		t.Errorf("above state = %v, want long", signals[1].State)
	}
	if signals[len(signals)-1].State != core.StateShort {
		t.Errorf("final state = %v, want short", signals[len(signals)-1].State)
	}
}

func TestSignals_Causal(t *testing.T) {
	closes := []float64{10, 12, 11, 14, 13, 16, 15, 18, 9, 8, 12, 14}
	bars := barsFromCloses(closes...)

	rule, err := New(2, 4, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	full, err := rule.Signals(context.Background(), bars, frameFor(t, bars, 2, 4))
	if err != nil {
		t.Fatalf("Signals() error = %v", err)
	}

	// Truncating the future must not change any earlier signal.
	for cut := rule.Warmup() + 1; cut < len(bars); cut++ {
		prefix := bars[:cut]
		partial, err := rule.Signals(context.Background(), prefix, frameFor(t, prefix, 2, 4))
		if err != nil {
			t.Fatalf("Signals() on prefix %d error = %v", cut, err)
		}
		for i := range partial {
			if partial[i].State != full[i].State {
				t.Errorf("prefix %d signal %d = %v, full run has %v", cut, i, partial[i].State, full[i].State)
			}
		}
	}
}
