package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantprim/prism/internal/classifier/llmcls"
	"github.com/quantprim/prism/internal/config"
	"github.com/quantprim/prism/internal/export"
	"github.com/quantprim/prism/internal/feature"
	"github.com/quantprim/prism/internal/indicator"
	llmfactory "github.com/quantprim/prism/internal/llm/factory"
	"github.com/quantprim/prism/internal/logger"
	"github.com/quantprim/prism/internal/metrics"
	"github.com/quantprim/prism/internal/series"
	"github.com/quantprim/prism/internal/sim"
	"github.com/quantprim/prism/internal/storage/archive"
	"github.com/quantprim/prism/internal/storage/ledger"
	"github.com/quantprim/prism/internal/strategy"
	"github.com/quantprim/prism/internal/strategy/macross"
	"github.com/quantprim/prism/internal/strategy/mlrule"
	"github.com/quantprim/prism/internal/strategy/rsioverlay"
)

var (
	backtestSymbol   string
	backtestFrom     string
	backtestTo       string
	backtestInterval string
	backtestInput    string
	backtestStrategy string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy against historical data",
	Long:  "Run a signal rule against historical bars and report performance statistics",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD")
	backtestCmd.Flags().StringVar(&backtestInterval, "interval", "1d", "Bar interval (1m, 5m, 1h, 4h, 1d)")
	backtestCmd.Flags().StringVar(&backtestInput, "input", "", "Bar CSV file instead of a feed fetch")
	backtestCmd.Flags().StringVar(&backtestStrategy, "strategy", "", "Rule name override")

	rootCmd.AddCommand(backtestCmd)
}

func simConfig(cfg config.BacktestConfig) sim.Config {
	return sim.Config{
		InitialCapital: cfg.InitialCapital,
		CostRate:       cfg.CostRate,
		TradeSize:      cfg.TradeSize,
		RiskFreeRate:   cfg.RiskFreeRate,
	}
}

// buildEngine registers every rule the configuration can support. The
// classifier rule needs an LLM provider, so it only appears when one is
// configured.
func buildEngine(cfg *config.Config, log *zap.Logger) (*strategy.Engine, error) {
	engine := strategy.NewEngine(log)

	cross, err := macross.New(cfg.Backtest.FastPeriod, cfg.Backtest.SlowPeriod, cfg.Backtest.AllowShort)
	if err != nil {
		return nil, err
	}
	engine.Register(cross)

	overlay, err := rsioverlay.New(cfg.Backtest.FastPeriod, cfg.Backtest.SlowPeriod,
		cfg.Backtest.RSIPeriod, cfg.Backtest.TrendPeriod)
	if err != nil {
		return nil, err
	}
	engine.Register(overlay)

	if cfg.LLM.Provider != "" {
		provider, err := llmfactory.New(cfg.LLM)
		if err != nil {
			return nil, err
		}
		engine.Register(mlrule.New(llmcls.New(provider), feature.Defaults()))
	}

	return engine, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	interval, err := parseInterval(backtestInterval)
	if err != nil {
		return err
	}

	ruleName := cfg.Backtest.Strategy
	if backtestStrategy != "" {
		ruleName = backtestStrategy
	}

	ctx := cmd.Context()
	reg := metrics.NewRegistry()

	bars, err := loadBars(ctx, cfg, reg, log, backtestInput, backtestSymbol, backtestFrom, backtestTo, interval)
	if err != nil {
		return err
	}

	s, err := series.Load(bars)
	if err != nil {
		return fmt.Errorf("loading series: %w", err)
	}

	frame, err := indicator.Compute(s.Bars(), indicator.Config{
		FastPeriod:  cfg.Backtest.FastPeriod,
		SlowPeriod:  cfg.Backtest.SlowPeriod,
		TrendPeriod: cfg.Backtest.TrendPeriod,
		RSIPeriod:   cfg.Backtest.RSIPeriod,
	})
	if err != nil {
		return fmt.Errorf("computing indicators: %w", err)
	}

	engine, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}
	rule, ok := engine.Get(ruleName)
	if !ok {
		return fmt.Errorf("unknown strategy %q, available: %v", ruleName, engine.Names())
	}

	start := time.Now()
	runID := uuid.NewString()

	seq, err := strategy.Generate(ctx, s.Bars(), frame, rule)
	if err != nil {
		reg.RecordRun(rule.Name(), "error", time.Since(start).Seconds())
		return fmt.Errorf("generating signals: %w", err)
	}

	result, err := sim.New(simConfig(cfg.Backtest)).Run(s.Bars(), seq)
	if err != nil {
		reg.RecordRun(rule.Name(), "error", time.Since(start).Seconds())
		return fmt.Errorf("running simulation: %w", err)
	}
	reg.RecordRun(rule.Name(), "ok", time.Since(start).Seconds())

	if err := recordTrades(ctx, cfg, reg, runID, backtestSymbol, rule.Name(), result.Trades); err != nil {
		return err
	}
	if err := archiveRun(ctx, cfg, runID, result); err != nil {
		return err
	}

	log.Info("backtest finished",
		zap.String("run_id", runID),
		zap.String("strategy", rule.Name()),
		zap.Int("trades", len(result.Trades)))

	printReport(runID, rule.Name(), s.Len(), result.Report)
	return nil
}

func recordTrades(ctx context.Context, cfg *config.Config, reg *metrics.Registry,
	runID, symbol, ruleName string, trades []sim.Trade) error {

	store, err := ledger.New(cfg.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, trade := range trades {
		rec := ledger.Record{
			RunID:    runID,
			Symbol:   symbol,
			Strategy: ruleName,
			Trade:    trade,
		}
		if err := store.Append(ctx, rec); err != nil {
			return fmt.Errorf("recording trade: %w", err)
		}
	}
	reg.AddTrades(len(trades))
	return nil
}

func archiveRun(ctx context.Context, cfg *config.Config, runID string, result *sim.Result) error {
	storage, err := archive.New(cfg.Archive)
	if err != nil {
		return err
	}

	exp := export.New(storage)
	if err := exp.ReportJSON(ctx, runID, result.Report); err != nil {
		return fmt.Errorf("archiving report: %w", err)
	}
	if err := exp.TradesCSV(ctx, runID, result.Trades); err != nil {
		return fmt.Errorf("archiving trades: %w", err)
	}
	if err := exp.CurveCSV(ctx, runID, result.Curve); err != nil {
		return fmt.Errorf("archiving equity curve: %w", err)
	}
	return nil
}

func printReport(runID, ruleName string, barCount int, r sim.Report) {
	fmt.Println("=== PRISM Backtest ===")
	fmt.Printf("Run:      %s\n", runID)
	fmt.Printf("Strategy: %s\n", ruleName)
	fmt.Printf("Bars:     %d\n", barCount)
	fmt.Println()
	fmt.Printf("Initial capital:    %.2f\n", r.InitialCapital)
	fmt.Printf("Final equity:       %.2f\n", r.FinalEquity)
	fmt.Printf("Total return:       %.2f%%\n", r.TotalReturn*100)
	fmt.Printf("Annualized return:  %.2f%%\n", r.AnnualizedReturn*100)
	fmt.Printf("Sharpe ratio:       %.3f\n", r.SharpeRatio)
	fmt.Printf("Sortino ratio:      %.3f\n", r.SortinoRatio)
	fmt.Printf("Max drawdown:       %.2f%% (%d bars)\n", r.MaxDrawdown*100, r.MaxDrawdownDuration)
	fmt.Printf("Trades:             %d\n", r.TradeCount)
	fmt.Printf("Win rate:           %.2f%%\n", r.WinRate*100)
	fmt.Printf("Profit factor:      %.3f\n", r.ProfitFactor)
	fmt.Printf("Monthly PnL:        %.2f +/- %.2f (%d/%d months profitable)\n",
		r.MonthlyProfitMean, r.MonthlyProfitStd, r.ProfitableMonths, r.TotalMonths)
}
