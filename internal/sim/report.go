package sim

import (
	"math"
	"sort"
)

const (
	tradingDaysPerYear = 252
	daysPerYear        = 365
)

// Report is the read-only statistics snapshot of one completed run.
// Degenerate inputs (no trades, zero-variance returns, empty months) resolve
// to defined sentinel values rather than errors so a parameter sweep never
// aborts on one flat combination.
type Report struct {
	InitialCapital      float64
	FinalEquity         float64
	TotalReturn         float64
	AnnualizedReturn    float64
	SharpeRatio         float64
	SortinoRatio        float64
	MaxDrawdown         float64 // non-positive fraction of the running peak
	MaxDrawdownDuration int     // longest run of bars below a prior peak
	WinRate             float64
	ProfitFactor        float64 // +Inf when there are wins and no losses
	MonthlyProfitMean   float64
	MonthlyProfitStd    float64
	ProfitableMonths    int
	TotalMonths         int
	TradeCount          int
}

// NewReport reduces a trade ledger and equity curve to a Report. Pure: the
// same inputs always produce the same report.
func NewReport(trades []Trade, curve []EquityPoint, cfg Config) Report {
	r := Report{
		InitialCapital: cfg.InitialCapital,
		TradeCount:     len(trades),
	}
	if len(curve) == 0 {
		return r
	}

	r.FinalEquity = curve[len(curve)-1].TotalEquity
	r.TotalReturn = r.FinalEquity/cfg.InitialCapital - 1

	elapsedDays := curve[len(curve)-1].Time.Sub(curve[0].Time).Hours() / 24
	if elapsedDays > 0 {
		r.AnnualizedReturn = r.TotalReturn / (elapsedDays / daysPerYear)
	}

	excess := excessReturns(curve, cfg.RiskFreeRate)
	r.SharpeRatio = sharpe(excess)
	r.SortinoRatio = sortino(excess)
	r.MaxDrawdown, r.MaxDrawdownDuration = drawdown(curve)
	r.WinRate = winRate(trades)
	r.ProfitFactor = profitFactor(trades)
	r.MonthlyProfitMean, r.MonthlyProfitStd, r.ProfitableMonths, r.TotalMonths = monthly(trades)

	return r
}

// Flatten exports the report as a flat field-to-value mapping for CSV/JSON
// serialization.
func (r Report) Flatten() map[string]float64 {
	return map[string]float64{
		"initial_capital":       r.InitialCapital,
		"final_equity":          r.FinalEquity,
		"total_return":          r.TotalReturn,
		"annualized_return":     r.AnnualizedReturn,
		"sharpe_ratio":          r.SharpeRatio,
		"sortino_ratio":         r.SortinoRatio,
		"max_drawdown":          r.MaxDrawdown,
		"max_drawdown_duration": float64(r.MaxDrawdownDuration),
		"win_rate":              r.WinRate,
		"profit_factor":         r.ProfitFactor,
		"monthly_profit_mean":   r.MonthlyProfitMean,
		"monthly_profit_std":    r.MonthlyProfitStd,
		"profitable_months":     float64(r.ProfitableMonths),
		"total_months":          float64(r.TotalMonths),
		"trades":                float64(r.TradeCount),
	}
}

// Metric looks up a single flattened field, for sweep ranking.
func (r Report) Metric(name string) (float64, bool) {
	v, ok := r.Flatten()[name]
	return v, ok
}

// FlattenKeys returns the export field names in stable order.
func FlattenKeys() []string {
	keys := []string{
		"initial_capital", "final_equity", "total_return", "annualized_return",
		"sharpe_ratio", "sortino_ratio", "max_drawdown", "max_drawdown_duration",
		"win_rate", "profit_factor", "monthly_profit_mean", "monthly_profit_std",
		"profitable_months", "total_months", "trades",
	}
	return keys
}

// excessReturns derives per-bar returns from the equity curve, less the
// per-day risk-free slice.
func excessReturns(curve []EquityPoint, riskFree float64) []float64 {
	if len(curve) < 2 {
		return nil
	}
	rf := riskFree / tradingDaysPerYear
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].TotalEquity
		if prev == 0 {
			continue
		}
		out = append(out, curve[i].TotalEquity/prev-1-rf)
	}
	return out
}

// sharpe is sqrt(252) * mean / stdev of the excess returns, 0 when the
// standard deviation is exactly zero.
func sharpe(excess []float64) float64 {
	if len(excess) < 2 {
		return 0
	}
	m := mean(excess)
	sd := stdev(excess, m)
	if sd == 0 {
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * m / sd
}

// sortino uses only the negative excess returns in the denominator. Fewer
// than two downside samples resolve to the 0 sentinel: a sample standard
// deviation needs at least two points, and the no-negative-returns case falls
// out of the same guard.
func sortino(excess []float64) float64 {
	var downside []float64
	for _, r := range excess {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) < 2 {
		return 0
	}
	sd := stdev(downside, mean(downside))
	if sd == 0 {
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * mean(excess) / sd
}

// drawdown tracks the running equity maximum and returns the deepest
// peak-to-trough fraction (non-positive) plus the longest run of bars spent
// below a prior peak.
func drawdown(curve []EquityPoint) (float64, int) {
	var maxDD float64
	var maxDuration, current int
	peak := curve[0].TotalEquity

	for _, p := range curve {
		// Matching the peak exactly ends a below-peak run.
		if p.TotalEquity >= peak {
			peak = p.TotalEquity
			current = 0
			continue
		}

		current++
		if current > maxDuration {
			maxDuration = current
		}
		if peak > 0 {
			dd := (p.TotalEquity - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD, maxDuration
}

// winRate is wins over non-zero-pnl trades, 0 when nothing closed with pnl.
func winRate(trades []Trade) float64 {
	var wins, nonzero int
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
		}
		if t.PnL != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		return 0
	}
	return float64(wins) / float64(nonzero)
}

// profitFactor is gross wins over absolute gross losses: +Inf only when
// there are winning trades and no losing ones, 0 when there are no wins.
func profitFactor(trades []Trade) float64 {
	var winSum, lossSum float64
	for _, t := range trades {
		if t.PnL > 0 {
			winSum += t.PnL
		} else if t.PnL < 0 {
			lossSum += t.PnL
		}
	}
	if winSum == 0 {
		return 0
	}
	if lossSum == 0 {
		return math.Inf(1)
	}
	return winSum / math.Abs(lossSum)
}

// monthly resamples realized pnl by calendar month of the exit time and
// reports the mean, standard deviation and positive-month count.
func monthly(trades []Trade) (float64, float64, int, int) {
	if len(trades) == 0 {
		return 0, 0, 0, 0
	}

	byMonth := make(map[string]float64)
	for _, t := range trades {
		key := t.ExitTime.UTC().Format("2006-01")
		byMonth[key] += t.PnL
	}

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sums := make([]float64, 0, len(keys))
	profitable := 0
	for _, k := range keys {
		sums = append(sums, byMonth[k])
		if byMonth[k] > 0 {
			profitable++
		}
	}

	m := mean(sums)
	var sd float64
	if len(sums) > 1 {
		sd = stdev(sums, m)
	}
	return m, sd, profitable, len(sums)
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the sample standard deviation.
func stdev(values []float64, mean float64) float64 {
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)-1))
}
