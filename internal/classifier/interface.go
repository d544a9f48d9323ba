// Package classifier defines the contract for external signal classifiers.
// The engine holds no ML logic of its own; training and inference live behind
// this interface.
package classifier

import (
	"context"

	"github.com/quantprim/prism/internal/core"
)

// Classifier scores features and predicts per-bar trade actions.
type Classifier interface {
	// RankFeatures orders feature names by importance, descending.
	RankFeatures(ctx context.Context, X [][]float64, y []int, names []string) ([]string, error)

	// PredictSignal classifies one feature vector into BUY, SELL or HOLD.
	PredictSignal(ctx context.Context, features map[string]float64) (core.Action, error)
}
