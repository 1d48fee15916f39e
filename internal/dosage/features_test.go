package dosage

import "testing"

func TestSynthesizeDosePercentage(t *testing.T) {
	profiles := DefaultProfiles()

	tests := []struct {
		drug     string
		dose     float64
		expected float64
	}{
		{"Aspirin", 300, 30},
		{"Aspirin", 1000, 100},
		{"Warfarin", 8, 80},
		{"Omeprazole", 10, 25},
		{"Gabapentin", 900, 25},
	}

	for _, tt := range tests {
		t.Run(tt.drug, func(t *testing.T) {
			profile, ok := profiles.Lookup(tt.drug)
			if !ok {
				t.Fatalf("Profile for %s should exist", tt.drug)
			}

			f, err := Synthesize(
				PatientContext{Age: 40, Weight: 70, Gender: "M", AdmissionType: "ELECTIVE"},
				AdministrationEvent{Drug: tt.drug, Route: "Oral", DoseValue: tt.dose},
				profile,
			)
			if err != nil {
				t.Fatalf("Synthesize failed: %v", err)
			}

			if f.DosePercentage != tt.expected {
				t.Errorf("Expected dose percentage %.1f, got %.1f", tt.expected, f.DosePercentage)
			}
		})
	}
}

func TestSynthesizeMissingProfile(t *testing.T) {
	_, err := Synthesize(
		PatientContext{Age: 40, Weight: 70},
		AdministrationEvent{Drug: "Aspirin", Route: "Oral", DoseValue: 100},
		DrugProfile{},
	)
	if err == nil {
		t.Error("Expected error for missing drug profile")
	}

	// Profile for a different drug must be rejected too
	_, err = Synthesize(
		PatientContext{Age: 40, Weight: 70},
		AdministrationEvent{Drug: "Aspirin", Route: "Oral", DoseValue: 100},
		DrugProfile{Name: "Warfarin", MaxDose: 10, Unit: "mg"},
	)
	if err == nil {
		t.Error("Expected error for mismatched drug profile")
	}
}

func TestSynthesizeRiskFeatures(t *testing.T) {
	profile := DefaultProfiles()["Morphine"]

	f, err := Synthesize(
		PatientContext{Age: 60, Weight: 80, Diagnosis: "Heart Failure"},
		AdministrationEvent{Drug: "Morphine", Route: "IV", DoseValue: 15},
		profile,
	)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if f.RouteRisk != 3 {
		t.Errorf("Expected route risk 3 for IV, got %d", f.RouteRisk)
	}
	if f.DiagnosisRisk != 4 {
		t.Errorf("Expected diagnosis risk 4 for Heart Failure, got %d", f.DiagnosisRisk)
	}
	if f.RiskInteraction != 12 {
		t.Errorf("Expected risk interaction 12, got %d", f.RiskInteraction)
	}
}

func TestSynthesizeOptionalDiagnosis(t *testing.T) {
	profile := DefaultProfiles()["Aspirin"]

	f, err := Synthesize(
		PatientContext{Age: 40, Weight: 70},
		AdministrationEvent{Drug: "Aspirin", Route: "IV", DoseValue: 100},
		profile,
	)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if f.DiagnosisRisk != 0 {
		t.Errorf("Expected diagnosis risk 0 for absent diagnosis, got %d", f.DiagnosisRisk)
	}
	if f.RiskInteraction != 0 {
		t.Errorf("Expected risk interaction 0 for absent diagnosis, got %d", f.RiskInteraction)
	}
}

func TestSynthesizeWeightDefault(t *testing.T) {
	profile := DefaultProfiles()["Aspirin"]
	patient := PatientContext{Age: 40, Gender: "F", AdmissionType: "ELECTIVE"}
	event := AdministrationEvent{Drug: "Aspirin", Route: "Oral", DoseValue: 300}

	implicit, err := Synthesize(patient, event, profile)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	patient.Weight = DefaultWeightKg
	explicit, err := Synthesize(patient, event, profile)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if implicit != explicit {
		t.Errorf("Missing weight must behave as explicit %dkg: got %+v vs %+v", DefaultWeightKg, implicit, explicit)
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	profile := DefaultProfiles()["Tramadol"]
	patient := PatientContext{Age: 55, Weight: 92, Gender: "M", AdmissionType: "URGENT", Diagnosis: "COPD"}
	event := AdministrationEvent{Drug: "Tramadol", Route: "Intramuscular", DoseValue: 250}

	first, err := Synthesize(patient, event, profile)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := Synthesize(patient, event, profile)
		if err != nil {
			t.Fatalf("Synthesize failed: %v", err)
		}
		if again != first {
			t.Fatalf("Synthesize is not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		boundaries []float64
		expected   int
	}{
		{"age newborn", 1, AgeBuckets, 0},
		{"age lower boundary inclusive", 2, AgeBuckets, 1},
		{"age child", 10, AgeBuckets, 1},
		{"age adolescent boundary", 12, AgeBuckets, 2},
		{"age adult", 40, AgeBuckets, 3},
		{"age at retirement boundary", 65, AgeBuckets, 4},
		{"age elderly", 70, AgeBuckets, 4},
		{"age very elderly", 85, AgeBuckets, 5},
		{"age upper bound closed", 100, AgeBuckets, 5},
		{"age beyond bounds clamps", 120, AgeBuckets, 5},
		{"weight below bounds clamps", -5, WeightBuckets, 0},
		{"weight light", 15, WeightBuckets, 0},
		{"weight standard boundary", 70, WeightBuckets, 3},
		{"weight heavy", 120, WeightBuckets, 4},
		{"weight upper bound closed", 200, WeightBuckets, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bucketIndex(tt.value, tt.boundaries)
			if got != tt.expected {
				t.Errorf("Expected bucket %d for %.0f, got %d", tt.expected, tt.value, got)
			}
		})
	}
}

func TestDefaultProfilesInvariants(t *testing.T) {
	profiles := DefaultProfiles()
	if len(profiles) != 20 {
		t.Errorf("Expected 20 drug profiles, got %d", len(profiles))
	}

	for name, p := range profiles {
		if p.Name != name {
			t.Errorf("Profile key %q does not match name %q", name, p.Name)
		}
		if p.MinDose > p.MaxDose {
			t.Errorf("Profile %s: min dose %.1f exceeds max dose %.1f", name, p.MinDose, p.MaxDose)
		}
		if p.Unit == "" {
			t.Errorf("Profile %s: unit must be set", name)
		}
	}
}
