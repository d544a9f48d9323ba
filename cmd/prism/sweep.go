package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantprim/prism/internal/config"
	"github.com/quantprim/prism/internal/export"
	"github.com/quantprim/prism/internal/logger"
	"github.com/quantprim/prism/internal/metrics"
	"github.com/quantprim/prism/internal/series"
	"github.com/quantprim/prism/internal/storage/archive"
	"github.com/quantprim/prism/internal/sweep"
)

var (
	sweepSymbol   string
	sweepFrom     string
	sweepTo       string
	sweepInterval string
	sweepInput    string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep crossover parameters over historical data",
	Long:  "Evaluate a grid of fast/slow crossover windows and rank the results",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepSymbol, "symbol", "", "Symbol to sweep")
	sweepCmd.Flags().StringVar(&sweepFrom, "from", "", "Start date YYYY-MM-DD")
	sweepCmd.Flags().StringVar(&sweepTo, "to", "", "End date YYYY-MM-DD")
	sweepCmd.Flags().StringVar(&sweepInterval, "interval", "1d", "Bar interval (1m, 5m, 1h, 4h, 1d)")
	sweepCmd.Flags().StringVar(&sweepInput, "input", "", "Bar CSV file instead of a feed fetch")

	rootCmd.AddCommand(sweepCmd)
}

// serveMetrics exposes the registry while the sweep runs. The returned stop
// function shuts the listener down.
func serveMetrics(cfg config.MetricsConfig, reg *metrics.Registry, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, reg.Handler())
	srv := &http.Server{Addr: cfg.Listen, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", zap.Error(err))
		}
	}()
	log.Info("metrics listening", zap.String("addr", cfg.Listen), zap.String("path", cfg.Path))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	interval, err := parseInterval(sweepInterval)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	if cfg.Metrics.Enabled {
		stopMetrics := serveMetrics(cfg.Metrics, reg, log)
		defer stopMetrics()
	}

	bars, err := loadBars(ctx, cfg, reg, log, sweepInput, sweepSymbol, sweepFrom, sweepTo, interval)
	if err != nil {
		return err
	}

	s, err := series.Load(bars)
	if err != nil {
		return fmt.Errorf("loading series: %w", err)
	}

	runner := sweep.New(cfg.Sweep, simConfig(cfg.Backtest), log)
	runner.SetMetrics(reg)
	runner.SetAllowShort(cfg.Backtest.AllowShort)

	outcomes, err := runner.Run(ctx, s.Bars())
	if err != nil {
		return fmt.Errorf("running sweep: %w", err)
	}

	sweepID := uuid.NewString()
	storage, err := archive.New(cfg.Archive)
	if err != nil {
		return err
	}
	header, rows := sweep.CSVTable(outcomes)
	resultsPath := fmt.Sprintf("sweeps/%s/results.csv", sweepID)
	if err := export.New(storage).CSV(ctx, resultsPath, header, rows); err != nil {
		return fmt.Errorf("archiving sweep results: %w", err)
	}

	best, err := sweep.Best(outcomes, cfg.Sweep.Metric)
	if err != nil {
		return fmt.Errorf("ranking sweep results: %w", err)
	}

	log.Info("sweep finished",
		zap.String("sweep_id", sweepID),
		zap.Int("combinations", len(outcomes)),
		zap.String("results", resultsPath))

	fmt.Println("=== PRISM Sweep ===")
	fmt.Printf("Sweep:        %s\n", sweepID)
	fmt.Printf("Combinations: %d\n", len(outcomes))
	fmt.Printf("Metric:       %s\n", cfg.Sweep.Metric)
	fmt.Println()
	fmt.Printf("Best: fast=%d slow=%d (run %s)\n", best.Fast, best.Slow, best.RunID)
	fmt.Printf("  %s = %.4f\n", cfg.Sweep.Metric, metricValue(best, cfg.Sweep.Metric))
	fmt.Printf("  total_return = %.2f%%\n", best.Report.TotalReturn*100)
	fmt.Printf("  trades = %d\n", best.Report.TradeCount)
	return nil
}

func metricValue(o sweep.Outcome, metric string) float64 {
	v, _ := o.Report.Metric(metric)
	return v
}
