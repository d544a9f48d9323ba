package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/indicator"
)

type stubRule struct {
	name    string
	warmup  int
	signals []core.Signal
	err     error
}

func (r *stubRule) Name() string { return r.name }
func (r *stubRule) Warmup() int  { return r.warmup }
func (r *stubRule) Signals(context.Context, []core.Bar, *indicator.Frame) ([]core.Signal, error) {
	return r.signals, r.err
}

func makeBars(n int) []core.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = core.Bar{
			Time: start.Add(time.Duration(i) * 24 * time.Hour),
			Open: price, High: price, Low: price, Close: price, Volume: 1,
		}
	}
	return bars
}

func TestGenerate_StampsTimeAndRule(t *testing.T) {
	bars := makeBars(5)
	rule := &stubRule{
		name:   "stub",
		warmup: 2,
		signals: []core.Signal{
			{State: core.StateLong},
			{State: core.StateFlat},
			{State: core.StateShort},
		},
	}

	seq, err := Generate(context.Background(), bars, nil, rule)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if seq.Offset != 2 {
		t.Errorf("Offset = %d, want 2", seq.Offset)
	}
	if seq.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", seq.Len())
	}
	for i, sig := range seq.Signals {
		if !sig.Time.Equal(bars[2+i].Time) {
			t.Errorf("signal %d time = %v, want %v", i, sig.Time, bars[2+i].Time)
		}
		if sig.Rule != "stub" {
			t.Errorf("signal %d rule = %q, want stub", i, sig.Rule)
		}
	}

	states := seq.States()
	want := []core.State{core.StateLong, core.StateFlat, core.StateShort}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("States()[%d] = %v, want %v", i, states[i], want[i])
		}
	}
}

func TestGenerate_SeriesTooShort(t *testing.T) {
	bars := makeBars(3)
	rule := &stubRule{name: "stub", warmup: 3}

	_, err := Generate(context.Background(), bars, nil, rule)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("error = %v, want INSUFFICIENT_DATA", err)
	}
}

func TestGenerate_WrongSignalCount(t *testing.T) {
	bars := makeBars(5)
	rule := &stubRule{
		name:    "stub",
		warmup:  2,
		signals: []core.Signal{{State: core.StateLong}}, // want 3
	}

	_, err := Generate(context.Background(), bars, nil, rule)
	if !errors.Is(err, core.ErrDataInvalid) {
		t.Errorf("error = %v, want DATA_INVALID", err)
	}
}

func TestGenerate_RuleError(t *testing.T) {
	bars := makeBars(5)
	wantErr := errors.New("boom")
	rule := &stubRule{name: "stub", warmup: 1, err: wantErr}

	_, err := Generate(context.Background(), bars, nil, rule)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped rule error", err)
	}
}

func TestEngine_RegisterAndGet(t *testing.T) {
	e := NewEngine()
	rule := &stubRule{name: "alpha"}
	e.Register(rule)

	got, ok := e.Get("alpha")
	if !ok || got.Name() != "alpha" {
		t.Errorf("Get(alpha) = %v, %v", got, ok)
	}
	if _, ok := e.Get("missing"); ok {
		t.Error("Get(missing) reported an unregistered rule")
	}

	e.Register(&stubRule{name: "beta"})
	names := e.Names()
	if len(names) != 2 {
		t.Errorf("Names() = %v, want 2 entries", names)
	}
}

func TestEngine_RegisterOverwrites(t *testing.T) {
	e := NewEngine()
	e.Register(&stubRule{name: "alpha", warmup: 1})
	e.Register(&stubRule{name: "alpha", warmup: 9})

	got, _ := e.Get("alpha")
	if got.Warmup() != 9 {
		t.Errorf("Warmup() = %d, want the later registration to win", got.Warmup())
	}
}
