// Package sweep evaluates a grid of crossover parameters over one bar
// series. Combinations run on a bounded worker pool; every run is
// independent, so the grid order never affects any single result.
package sweep

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantprim/prism/internal/config"
	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/indicator"
	"github.com/quantprim/prism/internal/metrics"
	"github.com/quantprim/prism/internal/sim"
	"github.com/quantprim/prism/internal/strategy"
	"github.com/quantprim/prism/internal/strategy/macross"
)

// Combo is one fast/slow parameter pair.
type Combo struct {
	Fast int
	Slow int
}

// Outcome is one evaluated combination. Err is set when the combination
// could not run (for example, the series is shorter than the slow window);
// the sweep itself continues.
type Outcome struct {
	RunID  string
	Fast   int
	Slow   int
	Report sim.Report
	Err    error
}

// Runner executes parameter sweeps.
type Runner struct {
	cfg        config.SweepConfig
	simCfg     sim.Config
	rsiPeriod  int
	allowShort bool
	logger     *zap.Logger
	metrics    *metrics.Registry
}

// New creates a sweep runner.
func New(cfg config.SweepConfig, simCfg sim.Config, logger ...*zap.Logger) *Runner {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		simCfg:    simCfg,
		rsiPeriod: 14,
		logger:    l,
	}
}

// SetMetrics attaches a metrics registry to the runner.
func (r *Runner) SetMetrics(m *metrics.Registry) {
	r.metrics = m
}

// SetAllowShort switches the swept rule between long-only and long/short.
func (r *Runner) SetAllowShort(allow bool) {
	r.allowShort = allow
}

// Grid expands the configured ranges into concrete combinations. Pairs where
// the fast window does not stay below the slow one are skipped.
func (r *Runner) Grid() []Combo {
	var combos []Combo
	for fast := r.cfg.FastMin; fast <= r.cfg.FastMax; fast += r.cfg.FastStep {
		for slow := r.cfg.SlowMin; slow <= r.cfg.SlowMax; slow += r.cfg.SlowStep {
			if fast >= slow {
				continue
			}
			combos = append(combos, Combo{Fast: fast, Slow: slow})
		}
	}
	return combos
}

// Run evaluates every grid combination against the bars. Cancellation is
// honored between runs: combinations already finished are returned along
// with the context error.
func (r *Runner) Run(ctx context.Context, bars []core.Bar) ([]Outcome, error) {
	combos := r.Grid()
	if len(combos) == 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("sweep grid is empty: fast %d..%d/%d slow %d..%d/%d",
				r.cfg.FastMin, r.cfg.FastMax, r.cfg.FastStep,
				r.cfg.SlowMin, r.cfg.SlowMax, r.cfg.SlowStep))
	}

	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(combos) {
		workers = len(combos)
	}

	r.logger.Info("starting sweep",
		zap.Int("combinations", len(combos)),
		zap.Int("workers", workers))

	jobs := make(chan Combo)
	results := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.metrics != nil {
				r.metrics.SweepWorkerStart()
				defer r.metrics.SweepWorkerStop()
			}
			for combo := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- r.evaluate(ctx, bars, combo)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, c := range combos {
			select {
			case jobs <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var outcomes []Outcome
	for o := range results {
		outcomes = append(outcomes, o)
	}

	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].Fast != outcomes[j].Fast {
			return outcomes[i].Fast < outcomes[j].Fast
		}
		return outcomes[i].Slow < outcomes[j].Slow
	})

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (r *Runner) evaluate(ctx context.Context, bars []core.Bar, combo Combo) Outcome {
	out := Outcome{
		RunID: uuid.NewString(),
		Fast:  combo.Fast,
		Slow:  combo.Slow,
	}

	frame, err := indicator.Compute(bars, indicator.Config{
		FastPeriod:  combo.Fast,
		SlowPeriod:  combo.Slow,
		TrendPeriod: combo.Slow,
		RSIPeriod:   r.rsiPeriod,
	})
	if err != nil {
		return r.failed(out, err)
	}

	rule, err := macross.New(combo.Fast, combo.Slow, r.allowShort)
	if err != nil {
		return r.failed(out, err)
	}

	seq, err := strategy.Generate(ctx, bars, frame, rule)
	if err != nil {
		return r.failed(out, err)
	}

	result, err := sim.New(r.simCfg).Run(bars, seq)
	if err != nil {
		return r.failed(out, err)
	}

	out.Report = result.Report
	if r.metrics != nil {
		r.metrics.RecordSweepRun("ok")
	}
	r.logger.Debug("sweep run finished",
		zap.String("run_id", out.RunID),
		zap.Int("fast", combo.Fast),
		zap.Int("slow", combo.Slow),
		zap.Float64("sharpe", out.Report.SharpeRatio))
	return out
}

func (r *Runner) failed(out Outcome, err error) Outcome {
	out.Err = err
	if r.metrics != nil {
		r.metrics.RecordSweepRun("error")
	}
	r.logger.Warn("sweep run failed",
		zap.Int("fast", out.Fast),
		zap.Int("slow", out.Slow),
		zap.Error(err))
	return out
}

// Best returns the successful outcome with the highest value of the named
// metric. Max drawdown is non-positive, so maximizing still prefers the
// shallowest drawdown.
func Best(outcomes []Outcome, metric string) (Outcome, error) {
	var best Outcome
	found := false

	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		v, ok := o.Report.Metric(metric)
		if !ok {
			return Outcome{}, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown sweep metric: %s", metric))
		}
		if !found {
			best = o
			found = true
			continue
		}
		if current, _ := best.Report.Metric(metric); v > current {
			best = o
		}
	}

	if !found {
		return Outcome{}, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("no successful runs to rank"))
	}
	return best, nil
}

// CSVTable renders the outcomes as a results grid for export. Failed
// combinations are excluded.
func CSVTable(outcomes []Outcome) ([]string, [][]string) {
	header := append([]string{"run_id", "fast", "slow"}, sim.FlattenKeys()...)

	var rows [][]string
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		row := []string{o.RunID, strconv.Itoa(o.Fast), strconv.Itoa(o.Slow)}
		flat := o.Report.Flatten()
		for _, key := range sim.FlattenKeys() {
			row = append(row, strconv.FormatFloat(flat[key], 'f', -1, 64))
		}
		rows = append(rows, row)
	}
	return header, rows
}
