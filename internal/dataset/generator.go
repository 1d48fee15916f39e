// Package dataset generates labeled synthetic administration records for
// training the dosage classifier. Labels come from the clinical rule engine,
// so generated data and served predictions share one source of truth.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strconv"

	"github.com/medlink/dosage-service/internal/dosage"
)

// Row is one labeled training record
type Row struct {
	Age           float64
	Weight        float64
	Gender        string
	AdmissionType string
	Drug          string
	Route         string
	Diagnosis     string
	DoseValue     float64
	DoseUnit      string
	Features      dosage.Features
	DosageClass   int
}

// Generator produces reproducible synthetic records: the same seed and
// profile table always yield the same rows.
type Generator struct {
	rng      *rand.Rand
	profiles dosage.ProfileTable
	rules    dosage.RuleConfig

	drugs     []string
	routes    []string
	diagnoses []string
}

// NewGenerator creates a generator over the given profile table
func NewGenerator(seed int64, profiles dosage.ProfileTable) *Generator {
	drugs := profiles.Names()
	sort.Strings(drugs)

	routes := dosage.Routes()
	sort.Strings(routes)

	diagnoses := dosage.Diagnoses()
	sort.Strings(diagnoses)

	return &Generator{
		rng:       rand.New(rand.NewSource(seed)),
		profiles:  profiles,
		rules:     dosage.DefaultRuleConfig(),
		drugs:     drugs,
		routes:    routes,
		diagnoses: diagnoses,
	}
}

// Generate produces n labeled rows
func (g *Generator) Generate(n int) ([]Row, error) {
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		row, err := g.generateRow()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *Generator) generateRow() (Row, error) {
	age := g.sampleAge()
	weight := g.sampleWeight(age)

	drug := g.drugs[g.rng.Intn(len(g.drugs))]
	profile := g.profiles[drug]

	patient := dosage.PatientContext{
		Age:           age,
		Weight:        weight,
		Gender:        dosage.Genders[g.rng.Intn(len(dosage.Genders))],
		AdmissionType: g.sampleAdmissionType(),
		Diagnosis:     g.sampleDiagnosis(),
	}
	event := dosage.AdministrationEvent{
		Drug:      drug,
		Route:     g.routes[g.rng.Intn(len(g.routes))],
		DoseValue: g.sampleDose(profile, patient),
		DoseUnit:  profile.Unit,
	}

	features, err := dosage.Synthesize(patient, event, profile)
	if err != nil {
		return Row{}, fmt.Errorf("failed to synthesize features: %w", err)
	}

	class := dosage.ClassifyWithConfig(features, patient.Age, profile.AgeSensitive, patient.IsEmergency(), g.rules)

	return Row{
		Age:           patient.Age,
		Weight:        patient.Weight,
		Gender:        patient.Gender,
		AdmissionType: patient.AdmissionType,
		Drug:          event.Drug,
		Route:         event.Route,
		Diagnosis:     patient.Diagnosis,
		DoseValue:     event.DoseValue,
		DoseUnit:      event.DoseUnit,
		Features:      features,
		DosageClass:   class,
	}, nil
}

// sampleAge draws from a three-band population mix: 15% pediatric,
// 60% adult, 25% elderly.
func (g *Generator) sampleAge() float64 {
	switch p := g.rng.Float64(); {
	case p < 0.15:
		return g.rng.Float64() * 18
	case p < 0.75:
		return 18 + g.rng.Float64()*47
	default:
		return 65 + g.rng.Float64()*35
	}
}

// sampleWeight draws a weight loosely correlated with age
func (g *Generator) sampleWeight(age float64) float64 {
	if age < 18 {
		return clamp(8+age*3+g.rng.NormFloat64()*4, 3, 120)
	}
	return clamp(75+g.rng.NormFloat64()*15, 40, 200)
}

func (g *Generator) sampleAdmissionType() string {
	switch p := g.rng.Float64(); {
	case p < 0.40:
		return "ELECTIVE"
	case p < 0.70:
		return "EMERGENCY"
	case p < 0.85:
		return "URGENT"
	case p < 0.90:
		return "NEWBORN"
	default:
		return "OTHER"
	}
}

// sampleDiagnosis leaves roughly one record in ten without a diagnosis
func (g *Generator) sampleDiagnosis() string {
	if g.rng.Float64() < 0.1 {
		return ""
	}
	return g.diagnoses[g.rng.Intn(len(g.diagnoses))]
}

// sampleDose draws a dose within the documented range, scaled by body weight
// against the reference adult, reduced proportionally for children, and
// inflated for emergency admissions.
func (g *Generator) sampleDose(profile dosage.DrugProfile, patient dosage.PatientContext) float64 {
	dose := profile.MinDose + g.rng.Float64()*(profile.MaxDose-profile.MinDose)
	dose *= patient.Weight / dosage.DefaultWeightKg

	if patient.Age < 18 {
		dose *= patient.Age / 18
	}
	if patient.IsEmergency() {
		dose *= 1 + g.rng.Float64()*0.5
	}

	if dose < 0 {
		dose = 0
	}
	return dose
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// csvHeader lists the dataset columns in write order
var csvHeader = []string{
	"age", "weight", "gender", "admission_type",
	"drug", "route", "diagnosis", "dose_val_rx", "dose_unit_rx",
	"dose_percentage", "route_risk", "diagnosis_risk", "risk_interaction",
	"age_group", "weight_group", "bmi", "dosage_class",
}

// WriteCSV writes rows with a header in the training pipeline's column order
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			formatFloat(row.Age),
			formatFloat(row.Weight),
			row.Gender,
			row.AdmissionType,
			row.Drug,
			row.Route,
			row.Diagnosis,
			formatFloat(row.DoseValue),
			row.DoseUnit,
			formatFloat(row.Features.DosePercentage),
			strconv.Itoa(row.Features.RouteRisk),
			strconv.Itoa(row.Features.DiagnosisRisk),
			strconv.Itoa(row.Features.RiskInteraction),
			strconv.Itoa(row.Features.AgeGroup),
			strconv.Itoa(row.Features.WeightGroup),
			formatFloat(row.Features.BMI),
			strconv.Itoa(row.DosageClass),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
