// Package indicator computes aligned indicator series over a bar sequence.
// Every series has the same length as its input; leading positions inside an
// indicator's warm-up window are missing (NaN), never zero. A value at
// position i depends only on bars at positions <= i.
package indicator

import (
	"fmt"
	"math"

	"github.com/quantprim/prism/internal/core"
)

// Missing marks a position with insufficient history.
var Missing = math.NaN()

// IsMissing reports whether a series value is inside its warm-up window.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Frame maps indicator names to aligned numeric series.
type Frame struct {
	length int
	series map[string][]float64
}

// NewFrame creates a frame for series of the given length.
func NewFrame(length int) *Frame {
	return &Frame{
		length: length,
		series: make(map[string][]float64),
	}
}

// Len returns the aligned series length.
func (f *Frame) Len() int {
	return f.length
}

// Set stores a series under name. The series must match the frame length.
func (f *Frame) Set(name string, values []float64) error {
	if len(values) != f.length {
		return core.WrapError(core.ErrDataInvalid,
			fmt.Errorf("series %q has length %d, frame expects %d", name, len(values), f.length))
	}
	f.series[name] = values
	return nil
}

// Get returns the series stored under name.
func (f *Frame) Get(name string) ([]float64, bool) {
	s, ok := f.series[name]
	return s, ok
}

// Value returns the value of a series at position i. The second result is
// false when the series does not exist or the position is still missing.
func (f *Frame) Value(name string, i int) (float64, bool) {
	s, ok := f.series[name]
	if !ok || i < 0 || i >= len(s) || IsMissing(s[i]) {
		return 0, false
	}
	return s[i], true
}

// Names returns the stored indicator names.
func (f *Frame) Names() []string {
	names := make([]string, 0, len(f.series))
	for name := range f.series {
		names = append(names, name)
	}
	return names
}

// Config selects the indicator set Compute builds.
type Config struct {
	FastPeriod  int // fast SMA, default 20
	SlowPeriod  int // slow SMA, default 50
	TrendPeriod int // trend filter SMA, default 50
	RSIPeriod   int // default 14
}

// Canonical series names used by the strategy rules.
const (
	SeriesFastSMA  = "sma_fast"
	SeriesSlowSMA  = "sma_slow"
	SeriesTrendSMA = "sma_trend"
	SeriesRSI      = "rsi"
)

// Compute builds the standard frame for the given bars: fast/slow SMA for the
// crossover rules, the trend SMA and RSI for the overlay rule.
func Compute(bars []core.Bar, cfg Config) (*Frame, error) {
	if cfg.FastPeriod <= 0 || cfg.SlowPeriod <= 0 || cfg.RSIPeriod <= 0 || cfg.TrendPeriod <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("indicator periods must be positive: fast=%d slow=%d trend=%d rsi=%d",
				cfg.FastPeriod, cfg.SlowPeriod, cfg.TrendPeriod, cfg.RSIPeriod))
	}
	if cfg.FastPeriod >= cfg.SlowPeriod {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fast period %d must be below slow period %d", cfg.FastPeriod, cfg.SlowPeriod))
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	f := NewFrame(len(bars))
	if err := f.Set(SeriesFastSMA, SMA(closes, cfg.FastPeriod)); err != nil {
		return nil, err
	}
	if err := f.Set(SeriesSlowSMA, SMA(closes, cfg.SlowPeriod)); err != nil {
		return nil, err
	}
	if err := f.Set(SeriesTrendSMA, SMA(closes, cfg.TrendPeriod)); err != nil {
		return nil, err
	}
	if err := f.Set(SeriesRSI, RSI(closes, cfg.RSIPeriod)); err != nil {
		return nil, err
	}
	return f, nil
}
