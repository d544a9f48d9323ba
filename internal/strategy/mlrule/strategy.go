// Package mlrule bridges an external classifier into the signal vocabulary.
// The rule computes nothing itself: it feeds each bar's feature vector to the
// classifier and maps BUY/SELL/HOLD onto long/short/flat.
package mlrule

import (
	"context"
	"fmt"

	"github.com/quantprim/prism/internal/classifier"
	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/feature"
	"github.com/quantprim/prism/internal/indicator"
)

// Rule delegates signal decisions to a classifier.
type Rule struct {
	cls classifier.Classifier
	cfg feature.Config
}

// New creates a classifier-backed rule.
func New(cls classifier.Classifier, cfg feature.Config) *Rule {
	return &Rule{cls: cls, cfg: cfg}
}

func (r *Rule) Name() string {
	return "ml_classifier"
}

// Warmup follows the feature matrix: no prediction before every feature
// column is defined.
func (r *Rule) Warmup() int {
	return r.cfg.Warmup()
}

func (r *Rule) Signals(ctx context.Context, bars []core.Bar, _ *indicator.Frame) ([]core.Signal, error) {
	names, rows, _, err := feature.Matrix(bars, r.cfg)
	if err != nil {
		return nil, err
	}

	signals := make([]core.Signal, 0, len(rows))
	for _, row := range rows {
		vector := make(map[string]float64, len(names))
		for j, name := range names {
			vector[name] = row[j]
		}

		action, err := r.cls.PredictSignal(ctx, vector)
		if err != nil {
			return nil, core.WrapError(core.ErrClassifierFailed, err)
		}

		signals = append(signals, core.Signal{
			State:  action.ToState(),
			Reason: fmt.Sprintf("classifier %s", action),
		})
	}

	return signals, nil
}
