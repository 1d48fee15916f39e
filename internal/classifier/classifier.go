package classifier

import (
	"context"
	"fmt"
	"math"
)

// NumClasses is the size of the ordinal dosage class space {0..3}
const NumClasses = 4

// FeatureVector carries the model inputs for one administration event.
// Categorical values must already be resolved against the vocabulary.
type FeatureVector struct {
	Age             float64
	Weight          float64
	RouteRisk       int
	DiagnosisRisk   int
	RiskInteraction int
	BMI             float64
	AgeGroup        int
	WeightGroup     int

	Drug          string
	Route         string
	Gender        string
	AdmissionType string
	Diagnosis     string
}

// numeric returns the numeric feature values by name
func (fv FeatureVector) numeric(name string) (float64, bool) {
	switch name {
	case "age":
		return fv.Age, true
	case "weight":
		return fv.Weight, true
	case "route_risk":
		return float64(fv.RouteRisk), true
	case "diagnosis_risk":
		return float64(fv.DiagnosisRisk), true
	case "risk_interaction":
		return float64(fv.RiskInteraction), true
	case "bmi":
		return fv.BMI, true
	case "age_group":
		return float64(fv.AgeGroup), true
	case "weight_group":
		return float64(fv.WeightGroup), true
	}
	return 0, false
}

// categorical returns the categorical feature values by name
func (fv FeatureVector) categorical(name string) (string, bool) {
	switch name {
	case "drug":
		return fv.Drug, true
	case "route":
		return fv.Route, true
	case "gender":
		return fv.Gender, true
	case "admission_type":
		return fv.AdmissionType, true
	case "diagnosis":
		return fv.Diagnosis, true
	}
	return "", false
}

// Prediction is the classifier output: the winning class and the full
// probability distribution over the class space.
type Prediction struct {
	Class         int
	Probabilities []float64
}

// Validate checks the distribution shape. A malformed prediction is treated
// as an internal fault by the caller, never partially used.
func (p Prediction) Validate() error {
	if p.Class < 0 || p.Class >= NumClasses {
		return fmt.Errorf("predicted class %d out of range", p.Class)
	}
	if len(p.Probabilities) != NumClasses {
		return fmt.Errorf("expected %d class probabilities, got %d", NumClasses, len(p.Probabilities))
	}

	sum := 0.0
	for i, prob := range p.Probabilities {
		if math.IsNaN(prob) || math.IsInf(prob, 0) || prob < 0 || prob > 1 {
			return fmt.Errorf("probability %d is invalid: %v", i, prob)
		}
		sum += prob
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("probabilities sum to %v, expected 1", sum)
	}

	return nil
}

// Confidence is the probability mass assigned to the predicted class
func (p Prediction) Confidence() float64 {
	return p.Probabilities[p.Class]
}

// Classifier is the trained-model capability. Implementations must be safe
// for concurrent use; the call is synchronous with bounded latency.
type Classifier interface {
	Predict(ctx context.Context, fv FeatureVector) (Prediction, error)
}
