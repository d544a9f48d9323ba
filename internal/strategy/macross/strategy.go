// Package macross implements the moving-average crossover rule: long while
// the fast SMA is above the slow SMA, flat (or short) otherwise. The
// simulator trades the transitions, not the raw state.
package macross

import (
	"context"
	"fmt"

	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/indicator"
)

// Rule is the SMA crossover rule.
type Rule struct {
	fastPeriod int
	slowPeriod int
	allowShort bool
}

// New creates a crossover rule. With allowShort the below state is short
// instead of flat.
func New(fastPeriod, slowPeriod int, allowShort bool) (*Rule, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("crossover periods must be positive: fast=%d slow=%d", fastPeriod, slowPeriod))
	}
	if fastPeriod >= slowPeriod {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fast period %d must be below slow period %d", fastPeriod, slowPeriod))
	}
	return &Rule{fastPeriod: fastPeriod, slowPeriod: slowPeriod, allowShort: allowShort}, nil
}

func (r *Rule) Name() string {
	return "ma_crossover"
}

// Warmup is governed by the slow SMA: its first defined position is
// slowPeriod-1.
func (r *Rule) Warmup() int {
	return r.slowPeriod - 1
}

func (r *Rule) Signals(_ context.Context, bars []core.Bar, frame *indicator.Frame) ([]core.Signal, error) {
	below := core.StateFlat
	if r.allowShort {
		below = core.StateShort
	}

	signals := make([]core.Signal, 0, len(bars)-r.Warmup())
	prev := core.StateFlat
	first := true

	for i := r.Warmup(); i < len(bars); i++ {
		fast, okFast := frame.Value(indicator.SeriesFastSMA, i)
		slow, okSlow := frame.Value(indicator.SeriesSlowSMA, i)
		if !okFast || !okSlow {
			return nil, core.WrapError(core.ErrInsufficientData,
				fmt.Errorf("crossover SMAs missing at bar %d", i))
		}

		state := below
		if fast > slow {
			state = core.StateLong
		}

		sig := core.Signal{State: state}
		if first || state != prev {
			if state == core.StateLong {
				sig.Reason = fmt.Sprintf("MA%d (%.2f) above MA%d (%.2f)", r.fastPeriod, fast, r.slowPeriod, slow)
			} else {
				sig.Reason = fmt.Sprintf("MA%d (%.2f) below MA%d (%.2f)", r.fastPeriod, fast, r.slowPeriod, slow)
			}
		}
		signals = append(signals, sig)
		prev = state
		first = false
	}

	return signals, nil
}
