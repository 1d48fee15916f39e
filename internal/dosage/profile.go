package dosage

// DrugProfile holds the documented dose range for a single drug.
// Profiles are reference data: loaded once, never mutated.
type DrugProfile struct {
	Name         string  `json:"name"`
	MinDose      float64 `json:"min_dose"`
	MaxDose      float64 `json:"max_dose"`
	Unit         string  `json:"unit"`
	AgeSensitive bool    `json:"age_sensitive"`
}

// ProfileTable maps drug name to its profile
type ProfileTable map[string]DrugProfile

// Lookup returns the profile for a drug, if known
func (t ProfileTable) Lookup(drug string) (DrugProfile, bool) {
	p, ok := t[drug]
	return p, ok
}

// Names returns the drug names in the table, sorted order is the caller's concern
func (t ProfileTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	return names
}

// DefaultProfiles returns the compiled-in formulary. Used unless an external
// hospital formulary source is configured.
func DefaultProfiles() ProfileTable {
	profiles := []DrugProfile{
		{Name: "Aspirin", MinDose: 75, MaxDose: 1000, Unit: "mg", AgeSensitive: true},
		{Name: "Ibuprofen", MinDose: 200, MaxDose: 800, Unit: "mg", AgeSensitive: true},
		{Name: "Paracetamol", MinDose: 500, MaxDose: 1000, Unit: "mg", AgeSensitive: true},
		{Name: "Amoxicillin", MinDose: 250, MaxDose: 1000, Unit: "mg", AgeSensitive: true},
		{Name: "Omeprazole", MinDose: 10, MaxDose: 40, Unit: "mg", AgeSensitive: false},
		{Name: "Atorvastatin", MinDose: 10, MaxDose: 80, Unit: "mg", AgeSensitive: true},
		{Name: "Simvastatin", MinDose: 5, MaxDose: 40, Unit: "mg", AgeSensitive: true},
		{Name: "Metformin", MinDose: 500, MaxDose: 2000, Unit: "mg", AgeSensitive: false},
		{Name: "Lisinopril", MinDose: 5, MaxDose: 40, Unit: "mg", AgeSensitive: true},
		{Name: "Amlodipine", MinDose: 2.5, MaxDose: 10, Unit: "mg", AgeSensitive: true},
		{Name: "Warfarin", MinDose: 1, MaxDose: 10, Unit: "mg", AgeSensitive: true},
		{Name: "Levothyroxine", MinDose: 25, MaxDose: 200, Unit: "mcg", AgeSensitive: true},
		{Name: "Sertraline", MinDose: 25, MaxDose: 200, Unit: "mg", AgeSensitive: true},
		{Name: "Fluoxetine", MinDose: 10, MaxDose: 60, Unit: "mg", AgeSensitive: true},
		{Name: "Diazepam", MinDose: 2, MaxDose: 10, Unit: "mg", AgeSensitive: true},
		{Name: "Tramadol", MinDose: 50, MaxDose: 400, Unit: "mg", AgeSensitive: true},
		{Name: "Morphine", MinDose: 5, MaxDose: 30, Unit: "mg", AgeSensitive: true},
		{Name: "Losartan", MinDose: 25, MaxDose: 100, Unit: "mg", AgeSensitive: false},
		{Name: "Citalopram", MinDose: 10, MaxDose: 40, Unit: "mg", AgeSensitive: true},
		{Name: "Gabapentin", MinDose: 300, MaxDose: 3600, Unit: "mg", AgeSensitive: false},
	}

	table := make(ProfileTable, len(profiles))
	for _, p := range profiles {
		table[p.Name] = p
	}
	return table
}

// RouteRisk assigns a fixed risk score per administration route
var RouteRisk = map[string]int{
	"Oral":          1,
	"Topical":       0,
	"Nasal":         1,
	"Rectal":        1,
	"IV":            3,
	"Intramuscular": 2,
	"Subcutaneous":  2,
}

// DiagnosisSeverity assigns a fixed severity score (1-4) per diagnosis
var DiagnosisSeverity = map[string]int{
	"Hypertension":     2,
	"Diabetes":         2,
	"Pneumonia":        3,
	"Asthma":           2,
	"COPD":             3,
	"Heart Failure":    4,
	"Stroke":           4,
	"Cancer":           4,
	"Arthritis":        1,
	"Depression":       1,
	"Anxiety":          1,
	"Infection":        2,
	"Fracture":         2,
	"Renal Failure":    4,
	"Liver Disease":    4,
	"Thyroid Disorder": 2,
}

// Genders accepted by the service
var Genders = []string{"F", "M"}

// AdmissionTypes accepted by the service
var AdmissionTypes = []string{"ELECTIVE", "EMERGENCY", "NEWBORN", "OTHER", "URGENT"}

// AdmissionEmergency is the admission type treated as an emergency context
const AdmissionEmergency = "EMERGENCY"

// Age and weight bucket boundaries. Intervals are half-open [b_i, b_{i+1})
// except the last, which is closed at the upper bound.
var (
	AgeBuckets    = []float64{0, 2, 12, 18, 65, 80, 100}
	WeightBuckets = []float64{0, 20, 40, 70, 100, 150, 200}
)

// Routes returns the known administration routes
func Routes() []string {
	routes := make([]string, 0, len(RouteRisk))
	for route := range RouteRisk {
		routes = append(routes, route)
	}
	return routes
}

// Diagnoses returns the known diagnoses
func Diagnoses() []string {
	diagnoses := make([]string, 0, len(DiagnosisSeverity))
	for d := range DiagnosisSeverity {
		diagnoses = append(diagnoses, d)
	}
	return diagnoses
}
