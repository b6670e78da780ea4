// Package classifier adapts a trained model to the aligned feature matrix.
package classifier

import (
	"context"
	"errors"

	"github.com/user/phishguard/internal/entity"
)

var (
	// ErrManifestInvalid is returned for an empty manifest or one with blank or repeated names.
	ErrManifestInvalid = errors.New("classifier: invalid feature manifest")
	// ErrColumnMismatch means a matrix was not aligned to this classifier's manifest.
	ErrColumnMismatch = errors.New("classifier: matrix columns do not match manifest")
)

// Predictor is the required model capability: one class per row, 1 meaning phishing.
type Predictor interface {
	Predict(ctx context.Context, m *entity.Matrix) ([]int, error)
}

// ProbabilityPredictor is optional: the probability of the phishing class per row.
type ProbabilityPredictor interface {
	PredictProbability(ctx context.Context, m *entity.Matrix) ([]float64, error)
}

// FeatureNamer is implemented by artifacts that declare their input columns.
type FeatureNamer interface {
	FeatureNames() []string
}
