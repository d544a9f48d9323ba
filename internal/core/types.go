package core

import "time"

// Interval identifies a bar granularity ("1m", "5m", "1h", "1d").
type Interval string

const (
	Interval1m Interval = "1m"
	Interval5m Interval = "5m"
	Interval1h Interval = "1h"
	Interval4h Interval = "4h"
	Interval1d Interval = "1d"
)

// Duration returns the wall-clock span of one bar at this interval.
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval1m:
		return time.Minute
	case Interval5m:
		return 5 * time.Minute
	case Interval1h:
		return time.Hour
	case Interval4h:
		return 4 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Bar is one OHLCV observation. Timestamps within a series are strictly
// increasing and unique; prices are finite with Low <= {Open,Close} <= High.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// State is the discrete per-bar position state a rule emits.
type State int

const (
	StateFlat State = iota
	StateLong
	StateShort
)

func (s State) String() string {
	switch s {
	case StateLong:
		return "long"
	case StateShort:
		return "short"
	default:
		return "flat"
	}
}

// Signal is a per-bar rule output: the target state plus an optional
// human-readable reason. A signal at bar i is computable from bars <= i only.
type Signal struct {
	Time   time.Time
	State  State
	Reason string
	Rule   string
}

// Action is the classifier output vocabulary.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// ToState maps a classifier action onto the signal vocabulary.
func (a Action) ToState() State {
	switch a {
	case ActionBuy:
		return StateLong
	case ActionSell:
		return StateShort
	default:
		return StateFlat
	}
}
