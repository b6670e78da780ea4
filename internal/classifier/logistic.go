package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/user/phishguard/internal/entity"
)

// LogisticModel is a linear model exported as JSON. Optional mean/scale arrays
// standardize inputs the way the training pipeline did.
type LogisticModel struct {
	Names     []string  `json:"feature_names"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Mean      []float64 `json:"mean,omitempty"`
	Scale     []float64 `json:"scale,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
}

// LoadLogisticModel reads and validates a model artifact.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

func (m *LogisticModel) validate() error {
	if len(m.Weights) == 0 {
		return fmt.Errorf("no weights")
	}
	if len(m.Names) != 0 && len(m.Names) != len(m.Weights) {
		return fmt.Errorf("%d feature names for %d weights", len(m.Names), len(m.Weights))
	}
	if len(m.Mean) != 0 && len(m.Mean) != len(m.Weights) {
		return fmt.Errorf("%d means for %d weights", len(m.Mean), len(m.Weights))
	}
	if len(m.Scale) != 0 && len(m.Scale) != len(m.Weights) {
		return fmt.Errorf("%d scales for %d weights", len(m.Scale), len(m.Weights))
	}
	if m.Threshold <= 0 || m.Threshold >= 1 {
		m.Threshold = 0.5
	}
	return nil
}

// FeatureNames returns the declared input columns.
func (m *LogisticModel) FeatureNames() []string {
	return m.Names
}

// PredictProbability returns the sigmoid score of each row.
func (m *LogisticModel) PredictProbability(ctx context.Context, mat *entity.Matrix) ([]float64, error) {
	out := make([]float64, len(mat.Rows))
	for i, row := range mat.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(row) != len(m.Weights) {
			return nil, fmt.Errorf("row %d has %d values, model expects %d", i, len(row), len(m.Weights))
		}
		z := m.Bias
		for j, x := range row {
			if len(m.Mean) != 0 {
				x -= m.Mean[j]
			}
			if len(m.Scale) != 0 && m.Scale[j] != 0 {
				x /= m.Scale[j]
			}
			z += m.Weights[j] * x
		}
		out[i] = 1 / (1 + math.Exp(-z))
	}
	return out, nil
}

// Predict thresholds the probability at the model's own decision threshold.
func (m *LogisticModel) Predict(ctx context.Context, mat *entity.Matrix) ([]int, error) {
	probs, err := m.PredictProbability(ctx, mat)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(probs))
	for i, p := range probs {
		if p >= m.Threshold {
			out[i] = 1
		}
	}
	return out, nil
}
