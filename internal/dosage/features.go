package dosage

import "fmt"

// DefaultWeightKg substitutes a missing patient weight. The policy lives here,
// at the boundary, rather than inside branching logic downstream.
const DefaultWeightKg = 70

// PatientContext describes the patient at the time of administration.
// Categorical fields are expected to be resolved against the vocabulary
// before feature synthesis.
type PatientContext struct {
	Age           float64 `json:"age"`
	Weight        float64 `json:"weight"`
	Gender        string  `json:"gender"`
	AdmissionType string  `json:"admission_type"`
	Diagnosis     string  `json:"diagnosis,omitempty"`
}

// IsEmergency reports whether the admission is an emergency context
func (p PatientContext) IsEmergency() bool {
	return p.AdmissionType == AdmissionEmergency
}

// AdministrationEvent describes a single drug administration
type AdministrationEvent struct {
	Drug      string  `json:"drug"`
	Route     string  `json:"route"`
	DoseValue float64 `json:"dose_value"`
	DoseUnit  string  `json:"dose_unit,omitempty"`
}

// Features are the derived inputs to the rule engine and the classifier.
// Derived deterministically, never persisted independently of their source.
type Features struct {
	DosePercentage  float64 `json:"dose_percentage"`
	RouteRisk       int     `json:"route_risk"`
	DiagnosisRisk   int     `json:"diagnosis_risk"`
	RiskInteraction int     `json:"risk_interaction"`
	AgeGroup        int     `json:"age_group"`
	WeightGroup     int     `json:"weight_group"`
	BMI             float64 `json:"bmi"`
}

// Synthesize derives Features from resolved inputs and the drug profile.
// Same inputs always yield identical outputs. The profile must belong to the
// administered drug: dose percentage is computed against that drug's maximum
// dose, never a global constant.
func Synthesize(patient PatientContext, event AdministrationEvent, profile DrugProfile) (Features, error) {
	if profile.Name == "" || profile.Name != event.Drug {
		return Features{}, fmt.Errorf("drug profile missing for %q", event.Drug)
	}
	if profile.MaxDose <= 0 {
		return Features{}, fmt.Errorf("drug profile for %q has invalid max dose %v", profile.Name, profile.MaxDose)
	}

	routeRisk := RouteRisk[event.Route]

	// Diagnosis is optional; an absent diagnosis contributes zero risk.
	diagnosisRisk := 0
	if patient.Diagnosis != "" {
		diagnosisRisk = DiagnosisSeverity[patient.Diagnosis]
	}

	weight := patient.Weight
	if weight <= 0 {
		weight = DefaultWeightKg
	}

	return Features{
		DosePercentage:  event.DoseValue / profile.MaxDose * 100,
		RouteRisk:       routeRisk,
		DiagnosisRisk:   diagnosisRisk,
		RiskInteraction: routeRisk * diagnosisRisk,
		AgeGroup:        bucketIndex(patient.Age, AgeBuckets),
		WeightGroup:     bucketIndex(weight, WeightBuckets),
		BMI:             bodyMassIndex(patient.Age, weight),
	}, nil
}

// bucketIndex returns the index of the half-open interval [b_i, b_{i+1})
// containing v; the last interval is closed at its upper bound. Values outside
// the boundaries clamp to the first or last bucket.
func bucketIndex(v float64, boundaries []float64) int {
	idx := -1
	for _, b := range boundaries {
		if b <= v {
			idx++
		}
	}
	if idx < 0 {
		return 0
	}
	if max := len(boundaries) - 2; idx > max {
		return max
	}
	return idx
}

// bodyMassIndex approximates BMI using age as a height proxy, matching the
// training pipeline's feature derivation.
func bodyMassIndex(age, weight float64) float64 {
	if age <= 0 {
		return 0
	}
	h := age / 100
	return weight / (h * h)
}
