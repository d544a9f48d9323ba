// Package feature builds the numeric feature matrix consumed by an external
// classifier: trend SMAs, RSI and Bollinger bands plus the raw OHLC columns.
// Volume is deliberately excluded from the matrix.
package feature

import (
	"context"
	"fmt"

	"github.com/quantprim/prism/internal/classifier"
	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/indicator"
)

// Config selects the indicator windows for the matrix.
type Config struct {
	ShortSMA  int // default 20
	MediumSMA int // default 50
	LongSMA   int // default 200
	RSIPeriod int // default 14
	BollPd    int // default 20
	BollK     float64
	LookAhead int // label horizon in bars, default 5
}

// Defaults returns the standard feature configuration.
func Defaults() Config {
	return Config{
		ShortSMA:  20,
		MediumSMA: 50,
		LongSMA:   200,
		RSIPeriod: 14,
		BollPd:    20,
		BollK:     2,
		LookAhead: 5,
	}
}

// Warmup returns the number of leading bars with incomplete features.
func (c Config) Warmup() int {
	w := c.LongSMA - 1
	if c.RSIPeriod > w {
		w = c.RSIPeriod
	}
	if c.BollPd-1 > w {
		w = c.BollPd - 1
	}
	return w
}

// Matrix builds one feature row per bar from Warmup() onward. The returned
// offset maps row i to bars[offset+i].
func Matrix(bars []core.Bar, cfg Config) (names []string, rows [][]float64, offset int, err error) {
	offset = cfg.Warmup()
	if len(bars) <= offset {
		return nil, nil, 0, core.ErrInsufficientData
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	smaShort := indicator.SMA(closes, cfg.ShortSMA)
	smaMedium := indicator.SMA(closes, cfg.MediumSMA)
	smaLong := indicator.SMA(closes, cfg.LongSMA)
	rsi := indicator.RSI(closes, cfg.RSIPeriod)
	bands := indicator.Bollinger(closes, cfg.BollPd, cfg.BollK)

	names = []string{
		fmt.Sprintf("sma_%d", cfg.ShortSMA),
		fmt.Sprintf("sma_%d", cfg.MediumSMA),
		fmt.Sprintf("sma_%d", cfg.LongSMA),
		"rsi",
		"bb_middle",
		"bb_upper",
		"bb_lower",
		"open",
		"high",
		"low",
		"close",
	}

	rows = make([][]float64, 0, len(bars)-offset)
	for i := offset; i < len(bars); i++ {
		rows = append(rows, []float64{
			smaShort[i],
			smaMedium[i],
			smaLong[i],
			rsi[i],
			bands.Middle[i],
			bands.Upper[i],
			bands.Lower[i],
			bars[i].Open,
			bars[i].High,
			bars[i].Low,
			bars[i].Close,
		})
	}

	return names, rows, offset, nil
}

// Label builds the classification target for each bar: 1 when the close is
// higher lookAhead bars later, 0 otherwise. The last lookAhead bars have no
// target and are dropped.
func Label(bars []core.Bar, lookAhead int) []int {
	if lookAhead <= 0 || len(bars) <= lookAhead {
		return nil
	}
	y := make([]int, len(bars)-lookAhead)
	for i := range y {
		if bars[i+lookAhead].Close > bars[i].Close {
			y[i] = 1
		}
	}
	return y
}

// Select ranks the feature matrix through the classifier and returns the topN
// feature names.
func Select(ctx context.Context, cls classifier.Classifier, bars []core.Bar, cfg Config, topN int) ([]string, error) {
	names, rows, offset, err := Matrix(bars, cfg)
	if err != nil {
		return nil, err
	}

	labels := Label(bars, cfg.LookAhead)
	if len(labels) <= offset {
		return nil, core.ErrInsufficientData
	}
	labels = labels[offset:]

	// Trailing rows have no label yet.
	if len(rows) > len(labels) {
		rows = rows[:len(labels)]
	}

	ranked, err := cls.RankFeatures(ctx, rows, labels, names)
	if err != nil {
		return nil, core.WrapError(core.ErrClassifierFailed, err)
	}
	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked, nil
}
