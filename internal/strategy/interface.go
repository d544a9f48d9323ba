// Package strategy turns bars and indicators into per-bar position signals.
// Rules are causal: the signal at bar i is computable from data at positions
// <= i only, and bars inside the rule's warm-up window produce no signal at
// all, so callers can tell "no signal yet" from "signal is flat".
package strategy

import (
	"context"

	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/indicator"
)

// Rule derives one signal per bar from the warm-up offset onward.
type Rule interface {
	// Name identifies the rule in signal and trade records.
	Name() string

	// Warmup returns the number of leading bars with no signal.
	Warmup() int

	// Signals returns exactly len(bars)-Warmup() signals, one per bar
	// starting at position Warmup().
	Signals(ctx context.Context, bars []core.Bar, frame *indicator.Frame) ([]core.Signal, error)
}

// Sequence is a rule's output aligned to its source bars: Signals[i]
// corresponds to bars[Offset+i].
type Sequence struct {
	Offset  int
	Signals []core.Signal
}

// Len returns the number of signals.
func (s *Sequence) Len() int {
	return len(s.Signals)
}

// States extracts the per-bar state column.
func (s *Sequence) States() []core.State {
	states := make([]core.State, len(s.Signals))
	for i, sig := range s.Signals {
		states[i] = sig.State
	}
	return states
}

// Generate runs a rule over the bar sequence and returns its signal sequence.
// It fails with INSUFFICIENT_DATA when the series does not outlast the rule's
// warm-up window.
func Generate(ctx context.Context, bars []core.Bar, frame *indicator.Frame, rule Rule) (*Sequence, error) {
	warmup := rule.Warmup()
	if len(bars) <= warmup {
		return nil, core.ErrInsufficientData
	}

	signals, err := rule.Signals(ctx, bars, frame)
	if err != nil {
		return nil, err
	}
	if len(signals) != len(bars)-warmup {
		return nil, core.WrapError(core.ErrDataInvalid, errSignalCount(rule.Name(), len(signals), len(bars)-warmup))
	}

	for i := range signals {
		signals[i].Time = bars[warmup+i].Time
		signals[i].Rule = rule.Name()
	}

	return &Sequence{Offset: warmup, Signals: signals}, nil
}
