package mlrule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/feature"
)

type stubClassifier struct {
	actions []core.Action
	calls   int
	err     error
}

func (c *stubClassifier) RankFeatures(context.Context, [][]float64, []int, []string) ([]string, error) {
	return nil, nil
}

func (c *stubClassifier) PredictSignal(_ context.Context, _ map[string]float64) (core.Action, error) {
	if c.err != nil {
		return core.ActionHold, c.err
	}
	a := c.actions[c.calls%len(c.actions)]
	c.calls++
	return a, nil
}

func makeBars(n int) []core.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, n)
	for i := range bars {
		price := 100 + float64(i%7)
		bars[i] = core.Bar{
			Time: start.Add(time.Duration(i) * 24 * time.Hour),
			Open: price, High: price + 1, Low: price - 1, Close: price, Volume: 10,
		}
	}
	return bars
}

func smallConfig() feature.Config {
	return feature.Config{
		ShortSMA: 2, MediumSMA: 3, LongSMA: 4,
		RSIPeriod: 2, BollPd: 2, BollK: 2, LookAhead: 2,
	}
}

func TestSignals_MapsActionsToStates(t *testing.T) {
	cfg := smallConfig()
	bars := makeBars(cfg.Warmup() + 3)
	cls := &stubClassifier{actions: []core.Action{core.ActionBuy, core.ActionHold, core.ActionSell}}

	rule := New(cls, cfg)
	if rule.Name() != "ml_classifier" {
		t.Errorf("Name() = %q", rule.Name())
	}
	if rule.Warmup() != cfg.Warmup() {
		t.Errorf("Warmup() = %d, want %d", rule.Warmup(), cfg.Warmup())
	}

	signals, err := rule.Signals(context.Background(), bars, nil)
	if err != nil {
		t.Fatalf("Signals() error = %v", err)
	}

	if len(signals) != 3 {
		t.Fatalf("got %d signals, want 3", len(signals))
	}
	want := []core.State{core.StateLong, core.StateFlat, core.StateShort}
	for i, w := range want {
		if signals[i].State != w {
			t.Errorf("signal %d = %v, want %v", i, signals[i].State, w)
		}
		if signals[i].Reason == "" {
			t.Errorf("signal %d has no reason", i)
		}
	}
	if cls.calls != 3 {
		t.Errorf("classifier called %d times, want once per post-warmup bar", cls.calls)
	}
}

func TestSignals_ClassifierError(t *testing.T) {
	cfg := smallConfig()
	bars := makeBars(cfg.Warmup() + 2)
	cls := &stubClassifier{err: errors.New("model unavailable")}

	_, err := New(cls, cfg).Signals(context.Background(), bars, nil)
	if !errors.Is(err, core.ErrClassifierFailed) {
		t.Errorf("error = %v, want CLASSIFIER_FAILED", err)
	}
}

func TestSignals_InsufficientData(t *testing.T) {
	cfg := smallConfig()
	bars := makeBars(cfg.Warmup()) // one short of the first feature row

	_, err := New(&stubClassifier{actions: []core.Action{core.ActionHold}}, cfg).
		Signals(context.Background(), bars, nil)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("error = %v, want INSUFFICIENT_DATA", err)
	}
}
