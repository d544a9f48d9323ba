package llmcls

import (
	"context"
	"errors"
	"testing"

	"github.com/quantprim/prism/internal/classifier"
	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/llm"
)

type stubProvider struct {
	content string
	err     error
	lastReq llm.ChatRequest
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatResponse{Content: p.content}, nil
}

func TestClassifier_ImplementsInterface(t *testing.T) {
	var _ classifier.Classifier = (*Classifier)(nil)
}

func TestPredictSignal_ParsesJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    core.Action
	}{
		{"buy", `{"action": "BUY", "confidence": 0.8, "reasoning": "oversold"}`, core.ActionBuy},
		{"sell", `{"action": "sell", "confidence": 0.7, "reasoning": "overbought"}`, core.ActionSell},
		{"hold", `{"action": "HOLD", "confidence": 0.4, "reasoning": "mixed"}`, core.ActionHold},
		{"unknown action", `{"action": "SHRUG"}`, core.ActionHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{content: tt.content}
			got, err := New(p).PredictSignal(context.Background(), map[string]float64{"rsi": 25})
			if err != nil {
				t.Fatalf("PredictSignal() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("action = %v, want %v", got, tt.want)
			}
			if !p.lastReq.JSONMode {
				t.Error("request must use JSON mode")
			}
		})
	}
}

func TestPredictSignal_TextFallback(t *testing.T) {
	p := &stubProvider{content: "I would BUY here given the oversold reading."}
	got, err := New(p).PredictSignal(context.Background(), map[string]float64{"rsi": 25})
	if err != nil {
		t.Fatalf("PredictSignal() error = %v", err)
	}
	if got != core.ActionBuy {
		t.Errorf("action = %v, want buy extracted from text", got)
	}

	p = &stubProvider{content: "Could BUY or SELL, hard to say."}
	got, err = New(p).PredictSignal(context.Background(), map[string]float64{"rsi": 50})
	if err != nil {
		t.Fatalf("PredictSignal() error = %v", err)
	}
	if got != core.ActionHold {
		t.Errorf("action = %v, want hold on ambiguous text", got)
	}
}

func TestPredictSignal_ProviderError(t *testing.T) {
	p := &stubProvider{err: errors.New("network down")}
	_, err := New(p).PredictSignal(context.Background(), map[string]float64{"rsi": 25})
	if !errors.Is(err, core.ErrLLMFailed) {
		t.Errorf("error = %v, want LLM_FAILED", err)
	}
}

func TestRankFeatures_OrdersAndCompletes(t *testing.T) {
	p := &stubProvider{content: `{"features": ["rsi", "close", "bogus"]}`}
	X := [][]float64{{1, 2, 3}, {4, 5, 6}}
	y := []int{1, 0}
	names := []string{"close", "rsi", "sma_20"}

	ranked, err := New(p).RankFeatures(context.Background(), X, y, names)
	if err != nil {
		t.Fatalf("RankFeatures() error = %v", err)
	}

	want := []string{"rsi", "close", "sma_20"} // unknown dropped, missing appended
	if len(ranked) != len(want) {
		t.Fatalf("ranked = %v, want %v", ranked, want)
	}
	for i := range want {
		if ranked[i] != want[i] {
			t.Errorf("ranked[%d] = %q, want %q", i, ranked[i], want[i])
		}
	}
}

func TestRankFeatures_FallsBackToInputOrder(t *testing.T) {
	p := &stubProvider{content: "not json at all"}
	X := [][]float64{{1, 2}}
	y := []int{1}
	names := []string{"a", "b"}

	ranked, err := New(p).RankFeatures(context.Background(), X, y, names)
	if err != nil {
		t.Fatalf("RankFeatures() error = %v", err)
	}
	if len(ranked) != 2 || ranked[0] != "a" || ranked[1] != "b" {
		t.Errorf("ranked = %v, want input order", ranked)
	}
}

func TestRankFeatures_MisalignedInput(t *testing.T) {
	p := &stubProvider{content: `{"features": ["a"]}`}
	_, err := New(p).RankFeatures(context.Background(), [][]float64{{1}}, []int{1, 0}, []string{"a"})
	if !errors.Is(err, core.ErrDataInvalid) {
		t.Errorf("error = %v, want DATA_INVALID", err)
	}
}
