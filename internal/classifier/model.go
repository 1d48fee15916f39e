package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// NumericFeature is a standardized numeric model input
type NumericFeature struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// CategoricalFeature is a one-hot encoded model input. Values not listed are
// encoded as all zeros, mirroring the training pipeline's unknown handling.
type CategoricalFeature struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Artifact is the JSON representation of a trained linear classifier as
// exported by the training pipeline: standardized numeric features, one-hot
// categoricals, and per-class weight rows feeding a softmax.
type Artifact struct {
	ModelName   string               `json:"model_name"`
	Numeric     []NumericFeature     `json:"numeric_features"`
	Categorical []CategoricalFeature `json:"categorical_features"`
	Weights     [][]float64          `json:"weights"` // one row per class
	Bias        []float64            `json:"bias"`
}

// width returns the expected length of one weight row
func (a *Artifact) width() int {
	w := len(a.Numeric)
	for _, c := range a.Categorical {
		w += len(c.Values)
	}
	return w
}

// validate checks the artifact dimensions before it is accepted
func (a *Artifact) validate() error {
	if len(a.Weights) != NumClasses {
		return fmt.Errorf("expected %d weight rows, got %d", NumClasses, len(a.Weights))
	}
	if len(a.Bias) != NumClasses {
		return fmt.Errorf("expected %d bias terms, got %d", NumClasses, len(a.Bias))
	}

	width := a.width()
	if width == 0 {
		return fmt.Errorf("artifact declares no features")
	}
	for i, row := range a.Weights {
		if len(row) != width {
			return fmt.Errorf("weight row %d has %d entries, expected %d", i, len(row), width)
		}
	}

	for _, n := range a.Numeric {
		if n.Std <= 0 {
			return fmt.Errorf("numeric feature %q has non-positive std %v", n.Name, n.Std)
		}
	}

	return nil
}

// LinearModel implements Classifier over a loaded artifact. Immutable after
// construction and safe for concurrent use.
type LinearModel struct {
	artifact Artifact
}

// NewLinearModel builds a classifier from a validated artifact
func NewLinearModel(artifact Artifact) (*LinearModel, error) {
	if err := artifact.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	return &LinearModel{artifact: artifact}, nil
}

// LoadModel reads and validates a model artifact from disk
func LoadModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}

	return NewLinearModel(artifact)
}

// Name returns the model name recorded in the artifact
func (m *LinearModel) Name() string {
	return m.artifact.ModelName
}

// Predict encodes the feature vector and applies the linear model
func (m *LinearModel) Predict(_ context.Context, fv FeatureVector) (Prediction, error) {
	x, err := m.encode(fv)
	if err != nil {
		return Prediction{}, err
	}

	logits := make([]float64, NumClasses)
	for class := 0; class < NumClasses; class++ {
		sum := m.artifact.Bias[class]
		row := m.artifact.Weights[class]
		for i, v := range x {
			sum += row[i] * v
		}
		logits[class] = sum
	}

	probs := softmax(logits)

	best := 0
	for class := 1; class < NumClasses; class++ {
		if probs[class] > probs[best] {
			best = class
		}
	}

	return Prediction{Class: best, Probabilities: probs}, nil
}

// encode builds the model input: standardized numerics followed by one-hot
// categoricals in artifact order.
func (m *LinearModel) encode(fv FeatureVector) ([]float64, error) {
	x := make([]float64, 0, m.artifact.width())

	for _, n := range m.artifact.Numeric {
		value, ok := fv.numeric(n.Name)
		if !ok {
			return nil, fmt.Errorf("unknown numeric feature %q in artifact", n.Name)
		}
		x = append(x, (value-n.Mean)/n.Std)
	}

	for _, c := range m.artifact.Categorical {
		value, ok := fv.categorical(c.Name)
		if !ok {
			return nil, fmt.Errorf("unknown categorical feature %q in artifact", c.Name)
		}
		for _, candidate := range c.Values {
			if candidate == value {
				x = append(x, 1)
			} else {
				x = append(x, 0)
			}
		}
	}

	return x, nil
}

// softmax converts logits to a probability distribution
func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, l := range logits[1:] {
		if l > max {
			max = l
		}
	}

	probs := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		probs[i] = math.Exp(l - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
