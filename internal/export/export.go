// Package export serializes run results (reports, trade ledgers, equity
// curves) to CSV and JSON files in an archive backend.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/quantprim/prism/internal/sim"
	"github.com/quantprim/prism/internal/storage/archive"
)

// Exporter writes run artifacts to an archive backend.
type Exporter struct {
	storage archive.Storage
}

// New creates an exporter over the given backend.
func New(storage archive.Storage) *Exporter {
	return &Exporter{storage: storage}
}

// ReportJSON writes the flattened report as runs/<runID>/report.json.
// encoding/json rejects non-finite floats, and the profit factor sentinel is
// +Inf when there are wins and no losses, so non-finite values are rendered
// as strings.
func (e *Exporter) ReportJSON(ctx context.Context, runID string, report sim.Report) error {
	flat := report.Flatten()

	fields := make(map[string]any, len(flat))
	for k, v := range flat {
		fields[k] = jsonValue(v)
	}

	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return e.storage.Write(ctx, runPath(runID, "report.json"), data)
}

func jsonValue(v float64) any {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	default:
		return v
	}
}

// TradesCSV writes the trade ledger as runs/<runID>/trades.csv.
func (e *Exporter) TradesCSV(ctx context.Context, runID string, trades []sim.Trade) error {
	header := []string{
		"entry_time", "exit_time", "side", "entry_price", "exit_price",
		"size", "pnl", "cost", "exit_reason",
	}

	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			t.EntryTime.UTC().Format(time.RFC3339),
			t.ExitTime.UTC().Format(time.RFC3339),
			t.Side.String(),
			formatFloat(t.EntryPrice),
			formatFloat(t.ExitPrice),
			formatFloat(t.Size),
			formatFloat(t.PnL),
			formatFloat(t.Cost),
			string(t.Exit),
		})
	}

	return e.writeCSV(ctx, runPath(runID, "trades.csv"), header, rows)
}

// CurveCSV writes the equity curve as runs/<runID>/equity.csv.
func (e *Exporter) CurveCSV(ctx context.Context, runID string, curve []sim.EquityPoint) error {
	header := []string{"time", "cash", "position_value", "total_equity"}

	rows := make([][]string, 0, len(curve))
	for _, p := range curve {
		rows = append(rows, []string{
			p.Time.UTC().Format(time.RFC3339),
			formatFloat(p.Cash),
			formatFloat(p.PositionValue),
			formatFloat(p.TotalEquity),
		})
	}

	return e.writeCSV(ctx, runPath(runID, "equity.csv"), header, rows)
}

// CSV writes an arbitrary table to the given archive path. Used by the sweep
// runner for its results grid.
func (e *Exporter) CSV(ctx context.Context, path string, header []string, rows [][]string) error {
	return e.writeCSV(ctx, path, header, rows)
}

func (e *Exporter) writeCSV(ctx context.Context, path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return e.storage.Write(ctx, path, buf.Bytes())
}

func runPath(runID, name string) string {
	return fmt.Sprintf("runs/%s/%s", runID, name)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
