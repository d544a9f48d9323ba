// Package sim replays a signal sequence over a price series bar by bar,
// producing a trade ledger, a mark-to-market equity curve and a metrics
// report. The fold is strictly forward: no step reads past the current bar,
// and replaying identical inputs reproduces identical output.
package sim

import (
	"fmt"

	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/strategy"
)

// Simulator holds the run configuration.
type Simulator struct {
	cfg Config
}

// New creates a simulator. The config is validated on Run.
func New(cfg Config) *Simulator {
	return &Simulator{cfg: cfg}
}

// position is the single open exposure. The model is single-instrument,
// single-lot net exposure, never a multi-leg book.
type position struct {
	side       Side
	entryPrice float64
	entryTime  int // bar index
	entryCost  float64
}

// Run replays the signal sequence against the bars. Bars before the sequence
// offset carry no signal and stay flat; a position still open at the final
// bar is force-closed at its close price so the ledger never drops exposure.
func (s *Simulator) Run(bars []core.Bar, seq *strategy.Sequence) (*Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, core.ErrDataEmpty
	}
	if seq == nil || seq.Offset < 0 || seq.Offset+seq.Len() != len(bars) {
		return nil, core.WrapError(core.ErrDataInvalid,
			fmt.Errorf("signal sequence does not align with %d bars", len(bars)))
	}

	cash := s.cfg.InitialCapital
	size := s.cfg.TradeSize
	var pos *position
	var trades []Trade
	curve := make([]EquityPoint, 0, len(bars))

	openPos := func(side Side, i int) {
		price := bars[i].Close
		cost := size * price * s.cfg.CostRate
		if side == SideLong {
			cash -= size*price + cost
		} else {
			cash += size*price - cost
		}
		pos = &position{side: side, entryPrice: price, entryTime: i, entryCost: cost}
	}

	closePos := func(i int, reason ExitReason) {
		price := bars[i].Close
		cost := size * price * s.cfg.CostRate
		var pnl float64
		if pos.side == SideLong {
			cash += size*price - cost
			pnl = (price - pos.entryPrice) * size
		} else {
			cash -= size*price + cost
			pnl = (pos.entryPrice - price) * size
		}
		trades = append(trades, Trade{
			EntryTime:  bars[pos.entryTime].Time,
			ExitTime:   bars[i].Time,
			Side:       pos.side,
			EntryPrice: pos.entryPrice,
			ExitPrice:  price,
			Size:       size,
			PnL:        pnl,
			Cost:       pos.entryCost + cost,
			Exit:       reason,
		})
		pos = nil
	}

	for i := range bars {
		if i >= seq.Offset {
			target := seq.Signals[i-seq.Offset].State
			switch {
			case pos == nil && target == core.StateLong:
				openPos(SideLong, i)
			case pos == nil && target == core.StateShort:
				openPos(SideShort, i)
			case pos != nil && target == core.StateFlat:
				closePos(i, ExitSignal)
			case pos != nil && pos.side == SideLong && target == core.StateShort:
				// Reversal: close and reopen at the same bar close, no
				// intermediate flat state persisted.
				closePos(i, ExitFlip)
				openPos(SideShort, i)
			case pos != nil && pos.side == SideShort && target == core.StateLong:
				closePos(i, ExitFlip)
				openPos(SideLong, i)
			}
		}

		if i == len(bars)-1 && pos != nil {
			closePos(i, ExitFinal)
		}

		var positionValue float64
		if pos != nil {
			positionValue = size * bars[i].Close
			if pos.side == SideShort {
				positionValue = -positionValue
			}
		}
		curve = append(curve, EquityPoint{
			Time:          bars[i].Time,
			Cash:          cash,
			PositionValue: positionValue,
			TotalEquity:   cash + positionValue,
		})
	}

	return &Result{
		Trades: trades,
		Curve:  curve,
		Report: NewReport(trades, curve, s.cfg),
	}, nil
}
