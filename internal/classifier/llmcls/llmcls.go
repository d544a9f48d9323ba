// Package llmcls implements the classifier interface on top of a chat LLM.
// Feature vectors are rendered into a prompt and the model's JSON verdict is
// mapped back onto BUY/SELL/HOLD.
package llmcls

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/llm"
)

// Classifier asks an LLM provider for per-bar signal decisions.
type Classifier struct {
	llm         llm.Provider
	temperature float64
}

// New creates an LLM-backed classifier.
func New(provider llm.Provider) *Classifier {
	return &Classifier{llm: provider, temperature: 0.2}
}

type prediction struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type ranking struct {
	Features []string `json:"features"`
}

// PredictSignal renders the feature vector and asks the model for a decision.
func (c *Classifier) PredictSignal(ctx context.Context, features map[string]float64) (core.Action, error) {
	resp, err := c.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: predictSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: renderFeatures(features)},
		},
		MaxTokens:   512,
		Temperature: c.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return core.ActionHold, core.WrapError(core.ErrLLMFailed, err)
	}

	var p prediction
	if err := json.Unmarshal([]byte(resp.Content), &p); err != nil {
		return parseTextAction(resp.Content), nil
	}

	switch strings.ToUpper(p.Action) {
	case "BUY":
		return core.ActionBuy, nil
	case "SELL":
		return core.ActionSell, nil
	default:
		return core.ActionHold, nil
	}
}

// RankFeatures asks the model to order the feature columns by predictive
// value against the given labels.
func (c *Classifier) RankFeatures(ctx context.Context, X [][]float64, y []int, names []string) ([]string, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, core.WrapError(core.ErrDataInvalid,
			fmt.Errorf("feature matrix has %d rows, labels %d", len(X), len(y)))
	}

	resp, err := c.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: rankSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: renderMatrixSummary(X, y, names)},
		},
		MaxTokens:   512,
		Temperature: c.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, core.WrapError(core.ErrLLMFailed, err)
	}

	var r ranking
	if err := json.Unmarshal([]byte(resp.Content), &r); err != nil || len(r.Features) == 0 {
		// Keep only names we actually sent, in the model's order; anything
		// unusable falls back to the input order.
		return names, nil
	}

	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	ranked := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range r.Features {
		if known[n] && !seen[n] {
			ranked = append(ranked, n)
			seen[n] = true
		}
	}
	for _, n := range names {
		if !seen[n] {
			ranked = append(ranked, n)
		}
	}
	return ranked, nil
}

func renderFeatures(features map[string]float64) string {
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("## Current bar features:\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("- %s: %.4f\n", k, features[k]))
	}
	sb.WriteString("\nRespond with JSON: {\"action\": \"BUY\"|\"SELL\"|\"HOLD\", \"confidence\": 0.0-1.0, \"reasoning\": \"...\"}\n")
	return sb.String()
}

func renderMatrixSummary(X [][]float64, y []int, names []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Feature columns (%d rows):\n", len(X)))

	positive := 0
	for _, label := range y {
		if label == 1 {
			positive++
		}
	}
	sb.WriteString(fmt.Sprintf("Label balance: %d up, %d down.\n\n", positive, len(y)-positive))

	for j, name := range names {
		var sum, min, max float64
		min = X[0][j]
		max = X[0][j]
		for _, row := range X {
			v := row[j]
			sum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		sb.WriteString(fmt.Sprintf("- %s: mean=%.4f min=%.4f max=%.4f\n",
			name, sum/float64(len(X)), min, max))
	}

	sb.WriteString("\nRank the columns by predictive value for the label.\n")
	sb.WriteString("Respond with JSON: {\"features\": [\"most_predictive\", ...]}\n")
	return sb.String()
}

func parseTextAction(text string) core.Action {
	upper := strings.ToUpper(text)
	hasBuy := strings.Contains(upper, "BUY")
	hasSell := strings.Contains(upper, "SELL")
	switch {
	case hasBuy && !hasSell:
		return core.ActionBuy
	case hasSell && !hasBuy:
		return core.ActionSell
	default:
		return core.ActionHold
	}
}

const predictSystemPrompt = `You are a quantitative trading signal classifier. Given one bar's indicator features, decide whether the next move is up (BUY), down (SELL) or unclear (HOLD).

Guidelines:
1. RSI below 30 with price above its medium SMA suggests an oversold bounce: BUY
2. RSI above 70 with price below its medium SMA suggests exhaustion: SELL
3. Price near the lower Bollinger band in an uptrend favors BUY; near the upper band in a downtrend favors SELL
4. When indicators disagree, HOLD

Always respond with valid JSON in this format:
{"action": "BUY" | "SELL" | "HOLD", "confidence": 0.0-1.0, "reasoning": "explanation"}

Be conservative when uncertain. HOLD is appropriate when the picture is mixed.`

const rankSystemPrompt = `You are a feature-selection assistant for a trading classifier. Given summary statistics of feature columns and their label balance, rank the columns from most to least predictive.

Always respond with valid JSON in this format:
{"features": ["name1", "name2", ...]}

Include every column exactly once.`
