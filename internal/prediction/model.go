package prediction

import (
	"time"

	"github.com/google/uuid"
)

// PredictRequest is the raw prediction input. Categorical fields are free
// text and resolved against the vocabulary before use. Age is required;
// weight, diagnosis, and dose are optional.
type PredictRequest struct {
	Age           *float64 `json:"age"`
	Weight        *float64 `json:"weight,omitempty"`
	Drug          string   `json:"drug"`
	Route         string   `json:"route"`
	Gender        string   `json:"gender"`
	AdmissionType string   `json:"admission_type"`
	Diagnosis     string   `json:"diagnosis,omitempty"`
	DoseValue     float64  `json:"dose_val_rx,omitempty"`
	DoseUnit      string   `json:"dose_unit_rx,omitempty"`
}

// DosageClassification is the composed prediction result. Immutable once
// produced; confidence, label, and recommendation are always set together.
type DosageClassification struct {
	DosageClass    int     `json:"dosage_class"`
	DosageLabel    string  `json:"dosage_label"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
	NormalRange    string  `json:"normal_range,omitempty"`
}

// HealthStatus reflects whether the shared artifacts are loaded
type HealthStatus struct {
	Status  string `json:"status"` // ok | error
	Message string `json:"message"`
}

// Record is a stored prediction, kept for clinical audit
type Record struct {
	ID            uuid.UUID `json:"id"`
	Age           float64   `json:"age"`
	Weight        float64   `json:"weight"`
	Drug          string    `json:"drug"`
	Route         string    `json:"route"`
	Gender        string    `json:"gender"`
	AdmissionType string    `json:"admission_type"`
	Diagnosis     string    `json:"diagnosis,omitempty"`
	DosageClass   int       `json:"dosage_class"`
	DosageLabel   string    `json:"dosage_label"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

// dosageLabels maps each class to its display label
var dosageLabels = map[int]string{
	0: "Low dose",
	1: "Medium-low dose",
	2: "Medium-high dose",
	3: "High dose",
}

// recommendations maps each class to its clinical guidance text
var recommendations = map[int]string{
	0: "Low dose. Monitor treatment effectiveness and consider increasing the dose if the response is inadequate.",
	1: "Medium-low dose. Safe in most cases; continue monitoring effectiveness.",
	2: "Medium-high dose. Monitor the patient for potential side effects while maintaining treatment effectiveness.",
	3: "High dose. Use caution and monitor the patient closely for adverse reactions and side effects.",
}

// Age-specific caveats appended to the recommendation. Mutually exclusive.
const (
	pediatricCaveat = " (pediatric dose adjustments should be considered)"
	geriatricCaveat = " (elderly patients may require reduced doses)"
)

// Age boundaries for the recommendation caveats. These follow the reporting
// convention, distinct from the rule engine's vulnerability bounds.
const (
	pediatricAgeLimit = 18
	geriatricAgeLimit = 65
)

// composeRecommendation builds the final recommendation text for a class
func composeRecommendation(class int, age float64) string {
	text := recommendations[class]
	if age < pediatricAgeLimit {
		text += pediatricCaveat
	} else if age > geriatricAgeLimit {
		text += geriatricCaveat
	}
	return text
}
