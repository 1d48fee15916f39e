package vocab

import "testing"

var drugVocab = Vocabulary{"Aspirin", "Ibuprofen", "Paracetamol", "Warfarin", "Morphine"}

func TestResolveExact(t *testing.T) {
	r := NewResolver()

	match, ok := r.Resolve("Aspirin", drugVocab)
	if !ok {
		t.Fatal("Exact vocabulary entry should resolve")
	}
	if match.Value != "Aspirin" {
		t.Errorf("Expected 'Aspirin', got '%s'", match.Value)
	}
	if match.Similarity != 1.0 {
		t.Errorf("Expected similarity 1.0 for exact match, got %f", match.Similarity)
	}
	if !match.Exact {
		t.Error("Exact match should be flagged as exact")
	}
}

func TestResolveFuzzy(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		input    string
		expected string
	}{
		{"asprin", "Aspirin"},
		{"aspirin", "Aspirin"},
		{"warfarn", "Warfarin"},
		{"ibuprofin", "Ibuprofen"},
		{"paracetemol", "Paracetamol"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			match, ok := r.Resolve(tt.input, drugVocab)
			if !ok {
				t.Fatalf("'%s' should resolve by fuzzy match", tt.input)
			}
			if match.Value != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, match.Value)
			}
			if match.Exact {
				t.Error("Fuzzy match should not be flagged as exact")
			}
		})
	}
}

func TestResolveBelowThreshold(t *testing.T) {
	r := NewResolver()

	for _, input := range []string{"Xanadrine", "Quux", ""} {
		if _, ok := r.Resolve(input, drugVocab); ok {
			t.Errorf("'%s' should not resolve against the drug vocabulary", input)
		}
	}
}

func TestResolveAllAggregatesFailures(t *testing.T) {
	r := NewResolver()

	fields := []Field{
		{Name: "drug", Input: "asprin", Values: drugVocab},
		{Name: "route", Input: "Sideways", Values: Vocabulary{"Oral", "IV", "Topical"}},
		{Name: "gender", Input: "X", Values: Vocabulary{"F", "M"}},
		{Name: "admission_type", Input: "EMERGENCY", Values: Vocabulary{"ELECTIVE", "EMERGENCY", "URGENT"}},
	}

	resolved, failures := r.ResolveAll(fields)

	// Both bad fields must appear in a single aggregated failure list
	if len(failures) != 2 {
		t.Fatalf("Expected 2 failures, got %d: %v", len(failures), failures)
	}

	failed := map[string]string{}
	for _, f := range failures {
		failed[f.Field] = f.Input
	}
	if failed["route"] != "Sideways" {
		t.Errorf("Expected route failure with input 'Sideways', got %v", failures)
	}
	if failed["gender"] != "X" {
		t.Errorf("Expected gender failure with input 'X', got %v", failures)
	}

	if resolved["drug"].Value != "Aspirin" {
		t.Errorf("Expected drug resolved to 'Aspirin', got '%s'", resolved["drug"].Value)
	}
	if !resolved["admission_type"].Exact {
		t.Error("Expected admission_type to resolve exactly")
	}
}

func TestResolveAllSkipsAbsentOptional(t *testing.T) {
	r := NewResolver()

	fields := []Field{
		{Name: "drug", Input: "Aspirin", Values: drugVocab},
		{Name: "diagnosis", Input: "", Values: Vocabulary{"Hypertension", "Diabetes"}, Optional: true},
	}

	resolved, failures := r.ResolveAll(fields)
	if len(failures) != 0 {
		t.Errorf("Absent optional field should not fail resolution: %v", failures)
	}
	if _, ok := resolved["diagnosis"]; ok {
		t.Error("Absent optional field should not be resolved")
	}
}

func TestRatioContract(t *testing.T) {
	pairs := []struct{ a, b string }{
		{"Aspirin", "asprin"},
		{"Warfarin", "Morphine"},
		{"IV", "Oral"},
		{"", "Aspirin"},
		{"same", "same"},
	}

	for _, p := range pairs {
		ab := Ratio(p.a, p.b)
		ba := Ratio(p.b, p.a)
		if ab != ba {
			t.Errorf("Ratio must be symmetric: Ratio(%q,%q)=%f, Ratio(%q,%q)=%f", p.a, p.b, ab, p.b, p.a, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Ratio(%q,%q)=%f out of [0,1]", p.a, p.b, ab)
		}
	}

	if Ratio("Aspirin", "aspirin") != 1.0 {
		t.Error("Equal inputs under normalization must score 1.0")
	}
	if Ratio("Aspirin", "Warfarin") == 1.0 {
		t.Error("Different inputs must not score 1.0")
	}
}

func TestResolverThresholdBoundary(t *testing.T) {
	// A similarity exactly at the threshold does not resolve; it must exceed it
	exactly := func(a, b string) float64 {
		if a == b {
			return 1.0
		}
		return DefaultThreshold
	}

	r := NewResolverWith(DefaultThreshold, exactly)
	if _, ok := r.Resolve("near-miss", Vocabulary{"target"}); ok {
		t.Error("Similarity equal to the threshold should not resolve")
	}
}
