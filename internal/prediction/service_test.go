package prediction

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/medlink/dosage-service/internal/artifacts"
	"github.com/medlink/dosage-service/internal/classifier"
	"github.com/medlink/dosage-service/internal/shared/errors"
)

// testModelPath writes a small model artifact to disk: the route one-hot
// dominates, so Oral predicts class 0 and IV predicts class 3.
func testModelPath(t *testing.T) string {
	t.Helper()

	artifact := classifier.Artifact{
		ModelName: "test-linear",
		Numeric: []classifier.NumericFeature{
			{Name: "age", Mean: 45, Std: 20},
			{Name: "weight", Mean: 70, Std: 15},
		},
		Categorical: []classifier.CategoricalFeature{
			{Name: "route", Values: []string{"Oral", "IV"}},
		},
		Weights: [][]float64{
			{0, 0, 4, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 4},
		},
		Bias: []float64{0, 0, 0, 0},
	}

	data, err := json.Marshal(artifact)
	if err != nil {
		t.Fatalf("failed to marshal artifact: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	return path
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	store := artifacts.NewStore(testModelPath(t), nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("failed to load artifacts: %v", err)
	}
	return NewService(store, nil, nil, nil)
}

func fp(v float64) *float64 {
	return &v
}

func appError(t *testing.T, err error) *errors.AppError {
	t.Helper()

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected *errors.AppError, got %T: %v", err, err)
	}
	return appErr
}

func TestPredictSuccess(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Predict(context.Background(), PredictRequest{
		Age:           fp(30),
		Weight:        fp(80),
		Drug:          "Aspirin",
		Route:         "Oral",
		Gender:        "F",
		AdmissionType: "ELECTIVE",
		Diagnosis:     "Hypertension",
		DoseValue:     300,
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.DosageClass != 0 {
		t.Errorf("Expected class 0, got %d", result.DosageClass)
	}
	if result.DosageLabel != "Low dose" {
		t.Errorf("Expected label 'Low dose', got %q", result.DosageLabel)
	}
	if result.Confidence <= 0.25 || result.Confidence > 1 {
		t.Errorf("Expected confidence in (0.25, 1], got %f", result.Confidence)
	}
	if result.NormalRange != "75 - 1000 mg" {
		t.Errorf("Expected normal range '75 - 1000 mg', got %q", result.NormalRange)
	}
	if strings.Contains(result.Recommendation, "pediatric") || strings.Contains(result.Recommendation, "elderly") {
		t.Errorf("Unexpected age caveat for age 30: %q", result.Recommendation)
	}
}

func TestPredictFuzzyInputsResolve(t *testing.T) {
	svc := newTestService(t)

	// Misspelled drug and lowercased categoricals resolve to canonical values
	result, err := svc.Predict(context.Background(), PredictRequest{
		Age:           fp(30),
		Weight:        fp(80),
		Drug:          "asprin",
		Route:         "oral",
		Gender:        "f",
		AdmissionType: "elective",
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.NormalRange != "75 - 1000 mg" {
		t.Errorf("Expected Aspirin normal range, got %q", result.NormalRange)
	}
}

func TestPredictUnknownCategoriesAggregated(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Predict(context.Background(), PredictRequest{
		Age:           fp(30),
		Drug:          "Xanadrine",
		Route:         "Quux",
		Gender:        "F",
		AdmissionType: "ELECTIVE",
	})
	if err == nil {
		t.Fatal("Expected error for unknown categories")
	}

	appErr := appError(t, err)
	if appErr.Code != "UNKNOWN_CATEGORY" {
		t.Errorf("Expected UNKNOWN_CATEGORY, got %s", appErr.Code)
	}
	if appErr.Details["drug"] != "Xanadrine" {
		t.Errorf("Expected drug failure with input value, got %v", appErr.Details)
	}
	if appErr.Details["route"] != "Quux" {
		t.Errorf("Expected route failure with input value, got %v", appErr.Details)
	}
	if len(appErr.Details) != 2 {
		t.Errorf("Expected exactly 2 failed fields, got %v", appErr.Details)
	}
}

func TestPredictValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Predict(context.Background(), PredictRequest{})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	appErr := appError(t, err)
	if appErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %s", appErr.Code)
	}
	for _, field := range []string{"age", "drug", "route", "gender", "admission_type"} {
		if _, ok := appErr.Details[field]; !ok {
			t.Errorf("Expected validation detail for %s, got %v", field, appErr.Details)
		}
	}

	_, err = svc.Predict(context.Background(), PredictRequest{
		Age:           fp(-1),
		Weight:        fp(0),
		Drug:          "Aspirin",
		Route:         "Oral",
		Gender:        "F",
		AdmissionType: "ELECTIVE",
	})
	appErr = appError(t, err)
	if _, ok := appErr.Details["age"]; !ok {
		t.Errorf("Expected negative age to fail validation, got %v", appErr.Details)
	}
	if _, ok := appErr.Details["weight"]; !ok {
		t.Errorf("Expected non-positive weight to fail validation, got %v", appErr.Details)
	}
}

func TestPredictArtifactsUnavailable(t *testing.T) {
	store := artifacts.NewStore(filepath.Join(t.TempDir(), "missing.json"), nil)
	svc := NewService(store, nil, nil, nil)

	_, err := svc.Predict(context.Background(), PredictRequest{
		Age:           fp(30),
		Drug:          "Aspirin",
		Route:         "Oral",
		Gender:        "F",
		AdmissionType: "ELECTIVE",
	})
	if err == nil {
		t.Fatal("Expected error with unloaded artifacts")
	}

	appErr := appError(t, err)
	if appErr.Code != "ARTIFACTS_UNAVAILABLE" {
		t.Errorf("Expected ARTIFACTS_UNAVAILABLE, got %s", appErr.Code)
	}
	if appErr.HTTPStatus != 503 {
		t.Errorf("Expected status 503, got %d", appErr.HTTPStatus)
	}
}

func TestPredictMissingWeightUsesDefault(t *testing.T) {
	svc := newTestService(t)

	base := PredictRequest{
		Age:           fp(30),
		Drug:          "Aspirin",
		Route:         "Oral",
		Gender:        "F",
		AdmissionType: "ELECTIVE",
	}

	implicit, err := svc.Predict(context.Background(), base)
	if err != nil {
		t.Fatalf("Predict without weight failed: %v", err)
	}

	explicit := base
	explicit.Weight = fp(70)
	withDefault, err := svc.Predict(context.Background(), explicit)
	if err != nil {
		t.Fatalf("Predict with explicit weight failed: %v", err)
	}

	if *implicit != *withDefault {
		t.Errorf("Missing weight should equal explicit default: %+v vs %+v", implicit, withDefault)
	}
}

func TestPredictRouteDrivesClass(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Predict(context.Background(), PredictRequest{
		Age:           fp(80),
		Weight:        fp(70),
		Drug:          "Morphine",
		Route:         "IV",
		Gender:        "M",
		AdmissionType: "EMERGENCY",
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.DosageClass != 3 {
		t.Errorf("Expected class 3, got %d", result.DosageClass)
	}
	if result.DosageLabel != "High dose" {
		t.Errorf("Expected label 'High dose', got %q", result.DosageLabel)
	}
	if !strings.Contains(result.Recommendation, "elderly") {
		t.Errorf("Expected geriatric caveat for age 80, got %q", result.Recommendation)
	}
}

func TestKnownDrugs(t *testing.T) {
	svc := newTestService(t)

	drugs, err := svc.KnownDrugs()
	if err != nil {
		t.Fatalf("KnownDrugs failed: %v", err)
	}

	if len(drugs) != 20 {
		t.Errorf("Expected 20 drugs, got %d", len(drugs))
	}
	for i := 1; i < len(drugs); i++ {
		if drugs[i-1] >= drugs[i] {
			t.Fatalf("Expected sorted drug names, got %q before %q", drugs[i-1], drugs[i])
		}
	}
}

func TestHealth(t *testing.T) {
	svc := newTestService(t)
	if status := svc.Health(); status.Status != "ok" {
		t.Errorf("Expected ok status, got %+v", status)
	}

	unloaded := NewService(artifacts.NewStore("nowhere.json", nil), nil, nil, nil)
	status := unloaded.Health()
	if status.Status != "error" {
		t.Errorf("Expected error status, got %+v", status)
	}
	if status.Message != "Model not loaded" {
		t.Errorf("Expected 'Model not loaded', got %q", status.Message)
	}
}

func TestComposeRecommendation(t *testing.T) {
	tests := []struct {
		name     string
		class    int
		age      float64
		contains string
		excludes string
	}{
		{"pediatric caveat", 2, 10, "pediatric", "elderly"},
		{"geriatric caveat", 2, 70, "elderly", "pediatric"},
		{"adult has no caveat", 2, 40, "side effects", "pediatric"},
		{"boundary eighteen is adult", 0, 18, "Low dose", "pediatric"},
		{"boundary sixty-five is adult", 0, 65, "Low dose", "elderly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := composeRecommendation(tt.class, tt.age)
			if !strings.Contains(text, tt.contains) {
				t.Errorf("Expected %q in recommendation, got %q", tt.contains, text)
			}
			if strings.Contains(text, tt.excludes) {
				t.Errorf("Did not expect %q in recommendation, got %q", tt.excludes, text)
			}
		})
	}
}
