package sim

import (
	"fmt"
	"time"

	"github.com/quantprim/prism/internal/core"
)

// Side is the direction of a position or closed trade.
type Side int

const (
	SideLong Side = iota
	SideShort
)

func (s Side) String() string {
	if s == SideShort {
		return "short"
	}
	return "long"
}

// ExitReason records why a position was closed.
type ExitReason string

const (
	// ExitSignal marks a close on a neutral signal.
	ExitSignal ExitReason = "signal"
	// ExitFlip marks a close caused by an immediate reversal; the opposite
	// position opens at the same bar, so two ledger records share that
	// timestamp.
	ExitFlip ExitReason = "flip"
	// ExitFinal marks the forced close at the last bar of the series.
	ExitFinal ExitReason = "final_bar"
)

// Trade is a closed-position record. Immutable once appended to the ledger;
// the ledger is ordered by exit time and append-only.
type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	Side       Side
	EntryPrice float64
	ExitPrice  float64
	Size       float64
	PnL        float64 // gross, before costs
	Cost       float64 // entry plus exit leg costs
	Exit       ExitReason
}

// EquityPoint is one bar of the mark-to-market equity curve.
type EquityPoint struct {
	Time          time.Time
	Cash          float64
	PositionValue float64
	TotalEquity   float64
}

// Config holds one simulation run's parameters. All runs with identical
// inputs and config produce identical ledgers and curves.
type Config struct {
	InitialCapital float64
	CostRate       float64 // per-leg fraction of notional, default 0.001
	TradeSize      float64 // units per position, default 1
	RiskFreeRate   float64 // annual, used by the report reducer, default 0.02
}

// DefaultConfig returns the standard simulation parameters.
func DefaultConfig() Config {
	return Config{
		InitialCapital: 10000,
		CostRate:       0.001,
		TradeSize:      1,
		RiskFreeRate:   0.02,
	}
}

// Validate rejects impossible parameters before a run starts.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("initial capital must be positive, got %v", c.InitialCapital))
	}
	if c.CostRate < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("cost rate cannot be negative, got %v", c.CostRate))
	}
	if c.TradeSize <= 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("trade size must be positive, got %v", c.TradeSize))
	}
	return nil
}

// Result is one completed simulation run.
type Result struct {
	Trades []Trade
	Curve  []EquityPoint
	Report Report
}
