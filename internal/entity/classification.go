package entity

// Label is the classifier verdict for one URL.
type Label string

const (
	LabelBenign   Label = "benign"
	LabelPhishing Label = "phishing"
)

// LabelFromClass maps a model's integer class to a Label.
func LabelFromClass(class int) Label {
	if class == 1 {
		return LabelPhishing
	}
	return LabelBenign
}

// Classification is the scored result for one matrix row.
type Classification struct {
	URL         string
	Label       Label
	Probability *float64 // nil when the model cannot produce probabilities
}

// Qualifies reports whether the result should be persisted to the registry.
// A missing probability passes on the label alone; the threshold itself passes.
func (c Classification) Qualifies(threshold float64) bool {
	if c.Label != LabelPhishing {
		return false
	}
	return c.Probability == nil || *c.Probability >= threshold
}
