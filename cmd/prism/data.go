package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/quantprim/prism/internal/config"
	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/feed"
	"github.com/quantprim/prism/internal/metrics"
)

var barHeader = []string{"time", "open", "high", "low", "close", "volume"}

func parseInterval(s string) (core.Interval, error) {
	switch iv := core.Interval(s); iv {
	case core.Interval1m, core.Interval5m, core.Interval1h, core.Interval4h, core.Interval1d:
		return iv, nil
	}
	return "", fmt.Errorf("unknown interval %q (expected 1m, 5m, 1h, 4h or 1d)", s)
}

func parseDate(name, value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date format (expected YYYY-MM-DD): %w", name, err)
	}
	return d, nil
}

// loadBars resolves the bar source for a command: a local CSV file when
// inputFile is set, otherwise the configured market data feed.
func loadBars(ctx context.Context, cfg *config.Config, reg *metrics.Registry, log *zap.Logger,
	inputFile, symbol, fromStr, toStr string, interval core.Interval) ([]core.Bar, error) {

	if inputFile != "" {
		bars, err := readBarsCSV(inputFile)
		if err != nil {
			return nil, err
		}
		log.Info("loaded bars from file",
			zap.String("file", inputFile),
			zap.Int("bars", len(bars)))
		return bars, nil
	}

	if symbol == "" || fromStr == "" || toStr == "" {
		return nil, fmt.Errorf("either --input or --symbol with --from and --to is required")
	}

	from, err := parseDate("from", fromStr)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("to", toStr)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date must be after start date")
	}

	provider, err := feed.New(cfg.Feed)
	if err != nil {
		return nil, err
	}

	bars, err := provider.FetchBars(ctx, symbol, interval, from, to)
	if err != nil {
		reg.RecordFeedRequest(provider.Name(), "error")
		return nil, err
	}
	reg.RecordFeedRequest(provider.Name(), "ok")

	log.Info("fetched bars",
		zap.String("provider", provider.Name()),
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)))
	return bars, nil
}

func readBarsCSV(path string) ([]core.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no bar rows", path)
	}

	bars := make([]core.Bar, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(barHeader) {
			return nil, fmt.Errorf("%s row %d: %d columns, want %d", path, i+2, len(rec), len(barHeader))
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		vals := make([]float64, 5)
		for j := 0; j < 5; j++ {
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", path, i+2, barHeader[j+1], err)
			}
			vals[j] = v
		}
		bars = append(bars, core.Bar{
			Time: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Volume: vals[4],
		})
	}
	return bars, nil
}

func writeBarsCSV(path string, bars []core.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(barHeader); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
