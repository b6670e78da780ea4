package classifier

import (
	"context"
	"fmt"

	"github.com/user/phishguard/internal/entity"
	"go.uber.org/zap"
)

// Adapter scores aligned matrices. Whether the model can produce probabilities is
// decided once, when the adapter is built.
type Adapter struct {
	predictor Predictor
	proba     ProbabilityPredictor
	manifest  []string
	version   string
	logger    *zap.Logger
}

// NewAdapter wraps p for the given manifest.
func NewAdapter(p Predictor, manifest []string, version string, logger *zap.Logger) (*Adapter, error) {
	m, err := ValidateManifest(manifest)
	if err != nil {
		return nil, err
	}
	a := &Adapter{
		predictor: p,
		manifest:  m,
		version:   version,
		logger:    logger.Named("classifier"),
	}
	if pp, ok := p.(ProbabilityPredictor); ok {
		a.proba = pp
	}
	a.logger.Info("classifier ready",
		zap.String("version", version),
		zap.Int("features", len(m)),
		zap.Bool("probabilities", a.proba != nil),
	)
	return a, nil
}

// Manifest returns the ordered feature names the model expects.
func (a *Adapter) Manifest() []string {
	out := make([]string, len(a.manifest))
	copy(out, a.manifest)
	return out
}

// Version identifies the loaded model.
func (a *Adapter) Version() string {
	return a.version
}

// SupportsProbability reports whether scores carry probabilities when the model cooperates.
func (a *Adapter) SupportsProbability() bool {
	return a.proba != nil
}

// Score classifies every row of m. If the probability call fails the batch is
// returned label-only rather than failing.
func (a *Adapter) Score(ctx context.Context, m *entity.Matrix) ([]entity.Classification, error) {
	if m.Len() == 0 {
		return nil, nil
	}
	if err := a.checkColumns(m.Columns); err != nil {
		return nil, err
	}

	classes, err := a.predictor.Predict(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(classes) != m.Len() {
		return nil, fmt.Errorf("predict returned %d labels for %d rows", len(classes), m.Len())
	}

	var probs []float64
	if a.proba != nil {
		probs, err = a.proba.PredictProbability(ctx, m)
		if err == nil && len(probs) != m.Len() {
			err = fmt.Errorf("returned %d probabilities for %d rows", len(probs), m.Len())
		}
		if err != nil {
			a.logger.Warn("probability prediction failed, gating on labels only", zap.Error(err))
			probs = nil
		}
	}

	out := make([]entity.Classification, m.Len())
	for i := range classes {
		out[i] = entity.Classification{URL: m.URLs[i], Label: entity.LabelFromClass(classes[i])}
		if probs != nil {
			p := probs[i]
			out[i].Probability = &p
		}
	}
	return out, nil
}

func (a *Adapter) checkColumns(cols []string) error {
	if len(cols) != len(a.manifest) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrColumnMismatch, len(cols), len(a.manifest))
	}
	for i := range cols {
		if cols[i] != a.manifest[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrColumnMismatch, i, cols[i], a.manifest[i])
		}
	}
	return nil
}
