// Package rsioverlay layers an RSI mean-reversion filter over the crossover
// base state: overbought price under its trend SMA forces short, oversold
// price above its trend SMA forces long.
package rsioverlay

import (
	"context"
	"fmt"

	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/indicator"
	"github.com/quantprim/prism/internal/strategy/macross"
)

const (
	overbought = 70.0
	oversold   = 30.0
)

// Rule is the crossover rule with RSI overrides.
type Rule struct {
	base        *macross.Rule
	rsiPeriod   int
	trendPeriod int
}

// New creates the overlay rule on top of a fast/slow crossover base.
func New(fastPeriod, slowPeriod, rsiPeriod, trendPeriod int) (*Rule, error) {
	base, err := macross.New(fastPeriod, slowPeriod, true)
	if err != nil {
		return nil, err
	}
	if rsiPeriod <= 0 || trendPeriod <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("overlay periods must be positive: rsi=%d trend=%d", rsiPeriod, trendPeriod))
	}
	return &Rule{base: base, rsiPeriod: rsiPeriod, trendPeriod: trendPeriod}, nil
}

func (r *Rule) Name() string {
	return "rsi_overlay"
}

// Warmup covers the base crossover plus the RSI and trend SMA windows.
func (r *Rule) Warmup() int {
	w := r.base.Warmup()
	if r.rsiPeriod > w {
		w = r.rsiPeriod
	}
	if r.trendPeriod-1 > w {
		w = r.trendPeriod - 1
	}
	return w
}

func (r *Rule) Signals(ctx context.Context, bars []core.Bar, frame *indicator.Frame) ([]core.Signal, error) {
	baseSignals, err := r.base.Signals(ctx, bars, frame)
	if err != nil {
		return nil, err
	}
	baseOffset := r.base.Warmup()

	warmup := r.Warmup()
	signals := make([]core.Signal, 0, len(bars)-warmup)

	for i := warmup; i < len(bars); i++ {
		sig := baseSignals[i-baseOffset]

		rsi, okRSI := frame.Value(indicator.SeriesRSI, i)
		trend, okTrend := frame.Value(indicator.SeriesTrendSMA, i)
		if !okRSI || !okTrend {
			return nil, core.WrapError(core.ErrInsufficientData,
				fmt.Errorf("overlay indicators missing at bar %d", i))
		}

		close := bars[i].Close
		switch {
		case rsi > overbought && close < trend:
			sig.State = core.StateShort
			sig.Reason = fmt.Sprintf("RSI %.1f overbought, price below SMA%d", rsi, r.trendPeriod)
		case rsi < oversold && close > trend:
			sig.State = core.StateLong
			sig.Reason = fmt.Sprintf("RSI %.1f oversold, price above SMA%d", rsi, r.trendPeriod)
		}

		signals = append(signals, sig)
	}

	return signals, nil
}
