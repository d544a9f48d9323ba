package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quantprim/prism/internal/config"
	"github.com/quantprim/prism/internal/core"
)

func TestParseInterval(t *testing.T) {
	for _, s := range []string{"1m", "5m", "1h", "4h", "1d"} {
		iv, err := parseInterval(s)
		require.NoError(t, err)
		assert.Equal(t, core.Interval(s), iv)
	}

	_, err := parseInterval("3w")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("from", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = parseDate("from", "15/03/2024")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestBarsCSVRoundTrip(t *testing.T) {
	bars := []core.Bar{
		{
			Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Open: 100, High: 101.5, Low: 99.25, Close: 101, Volume: 1200,
		},
		{
			Time: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Open: 101, High: 102, Low: 100, Close: 100.5, Volume: 900,
		},
	}

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, writeBarsCSV(path, bars))

	got, err := readBarsCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Time.Equal(bars[0].Time))
	assert.Equal(t, bars[0].High, got[0].High)
	assert.Equal(t, bars[1].Close, got[1].Close)
	assert.Equal(t, bars[1].Volume, got[1].Volume)
}

func TestReadBarsCSV_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, writeBarsCSV(path, nil))

	_, err := readBarsCSV(path)
	assert.Error(t, err, "header-only file has no bar rows")

	_, err = readBarsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSimConfig(t *testing.T) {
	cfg := config.Defaults().Backtest
	sc := simConfig(cfg)

	assert.Equal(t, cfg.InitialCapital, sc.InitialCapital)
	assert.Equal(t, cfg.CostRate, sc.CostRate)
	assert.Equal(t, cfg.TradeSize, sc.TradeSize)
	assert.Equal(t, cfg.RiskFreeRate, sc.RiskFreeRate)
	require.NoError(t, sc.Validate())
}

func TestBuildEngine(t *testing.T) {
	cfg := config.Defaults()

	engine, err := buildEngine(cfg, zap.NewNop())
	require.NoError(t, err)

	_, ok := engine.Get("ma_crossover")
	assert.True(t, ok)
	_, ok = engine.Get("rsi_overlay")
	assert.True(t, ok)
	_, ok = engine.Get("ml_classifier")
	assert.False(t, ok, "classifier rule needs an LLM provider")
}

func TestBuildEngine_WithClassifier(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM = config.LLMConfig{
		Provider: "claude",
		Claude:   config.ClaudeConfig{APIKey: "test-key"},
	}

	engine, err := buildEngine(cfg, zap.NewNop())
	require.NoError(t, err)

	_, ok := engine.Get("ml_classifier")
	assert.True(t, ok)
}

func TestBuildEngine_InvalidPeriods(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backtest.FastPeriod = 50
	cfg.Backtest.SlowPeriod = 20

	_, err := buildEngine(cfg, zap.NewNop())
	assert.Error(t, err)
}
