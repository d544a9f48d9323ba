// Package series owns the ordered OHLCV substrate every other component
// reads. A Series is immutable once loaded; validation is all-or-nothing so
// a malformed input can never leave a partially built series behind.
package series

import (
	"fmt"
	"math"
	"time"

	"github.com/quantprim/prism/internal/core"
)

// Series is a validated, timestamp-ordered bar sequence.
type Series struct {
	bars []core.Bar
}

// Load validates the input and returns a Series. It fails with a DATA_* error
// when the input is empty, unordered, or contains a non-finite or inconsistent
// bar. The input slice is copied; callers keep ownership of theirs.
func Load(bars []core.Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, core.ErrDataEmpty
	}

	for i, b := range bars {
		if err := validateBar(b); err != nil {
			return nil, core.WrapError(core.ErrDataInvalid, fmt.Errorf("bar %d (%s): %w", i, b.Time.Format(time.RFC3339), err))
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return nil, core.WrapError(core.ErrDataUnordered,
				fmt.Errorf("bar %d (%s) not after bar %d (%s)", i, b.Time.Format(time.RFC3339), i-1, bars[i-1].Time.Format(time.RFC3339)))
		}
	}

	out := make([]core.Bar, len(bars))
	copy(out, bars)
	return &Series{bars: out}, nil
}

// Bars returns the underlying bar slice. Callers must not mutate it.
func (s *Series) Bars() []core.Bar {
	return s.bars
}

// Len returns the number of bars.
func (s *Series) Len() int {
	return len(s.bars)
}

// Closes extracts the close-price column.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}

// Resample aggregates the series into coarser buckets: open is the first
// value in the bucket, high the max, low the min, close the last, volume the
// sum. Buckets with no contributing bars are dropped, never zero-filled, so
// gaps in the input remain gaps in the output.
func (s *Series) Resample(bucket time.Duration) (*Series, error) {
	if bucket <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("resample bucket must be positive, got %v", bucket))
	}

	var out []core.Bar
	var cur *core.Bar
	var curStart time.Time

	for _, b := range s.bars {
		start := b.Time.Truncate(bucket)
		if cur == nil || !start.Equal(curStart) {
			if cur != nil {
				out = append(out, *cur)
			}
			curStart = start
			agg := core.Bar{
				Time:   start,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			}
			cur = &agg
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	if cur != nil {
		out = append(out, *cur)
	}

	return &Series{bars: out}, nil
}

func validateBar(b core.Bar) error {
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("non-finite price")
		}
	}
	if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
		return fmt.Errorf("prices outside low/high range")
	}
	if b.Volume < 0 {
		return fmt.Errorf("negative volume")
	}
	if b.Time.IsZero() {
		return fmt.Errorf("zero timestamp")
	}
	return nil
}
