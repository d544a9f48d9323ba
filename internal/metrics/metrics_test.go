package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	// Should have go runtime metrics at minimum
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func gatherHas(t *testing.T, reg *Registry, name string) bool {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return true
		}
	}
	return false
}

func TestRegistry_RecordRun(t *testing.T) {
	reg := NewRegistry()
	reg.RecordRun("ma_crossover", "ok", 0.25)

	if !gatherHas(t, reg, "prism_runs_total") {
		t.Error("expected prism_runs_total metric")
	}
	if !gatherHas(t, reg, "prism_run_duration_seconds") {
		t.Error("expected prism_run_duration_seconds metric")
	}
}

func TestRegistry_SweepMetrics(t *testing.T) {
	reg := NewRegistry()
	reg.SweepWorkerStart()
	reg.RecordSweepRun("ok")
	reg.RecordSweepRun("error")
	reg.SweepWorkerStop()

	if !gatherHas(t, reg, "prism_sweep_runs_total") {
		t.Error("expected prism_sweep_runs_total metric")
	}
	if !gatherHas(t, reg, "prism_sweep_workers_active") {
		t.Error("expected prism_sweep_workers_active metric")
	}
}

func TestRegistry_Handler(t *testing.T) {
	reg := NewRegistry()
	reg.RecordFeedRequest("limex", "ok")
	reg.AddTrades(3)

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, "prism_feed_requests_total") {
		t.Error("exposition missing prism_feed_requests_total")
	}
	if !strings.Contains(body, "prism_trades_recorded_total") {
		t.Error("exposition missing prism_trades_recorded_total")
	}
}
