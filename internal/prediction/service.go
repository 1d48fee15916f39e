package prediction

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/medlink/dosage-service/internal/artifacts"
	"github.com/medlink/dosage-service/internal/classifier"
	"github.com/medlink/dosage-service/internal/dosage"
	"github.com/medlink/dosage-service/internal/shared/errors"
	"github.com/medlink/dosage-service/internal/shared/events"
	"github.com/medlink/dosage-service/internal/shared/metrics"
	"github.com/medlink/dosage-service/internal/vocab"
)

// Service orchestrates a prediction: validate, resolve categoricals,
// synthesize features, invoke the classifier, compose the result.
// Stateless apart from the shared artifact snapshot.
type Service struct {
	store    *artifacts.Store
	resolver *vocab.Resolver
	repo     *Repository // optional, predictions are kept for audit when set
	bus      *events.Bus // optional, prediction.completed audit events
}

// NewService creates a prediction service. repo and bus may be nil.
func NewService(store *artifacts.Store, resolver *vocab.Resolver, repo *Repository, bus *events.Bus) *Service {
	if resolver == nil {
		resolver = vocab.NewResolver()
	}
	return &Service{store: store, resolver: resolver, repo: repo, bus: bus}
}

// Predict produces a dosage classification for one administration event
func (s *Service) Predict(ctx context.Context, req PredictRequest) (*DosageClassification, error) {
	start := time.Now()

	if err := validateRequest(req); err != nil {
		metrics.RecordPredictionError("VALIDATION_ERROR")
		return nil, err
	}

	bundle, ok := s.store.Bundle()
	if !ok {
		metrics.RecordPredictionError("ARTIFACTS_UNAVAILABLE")
		return nil, errors.ArtifactsUnavailable()
	}

	resolved, err := s.resolveCategories(req, bundle.Vocabularies)
	if err != nil {
		metrics.RecordPredictionError("UNKNOWN_CATEGORY")
		return nil, err
	}

	profile, ok := bundle.Profiles.Lookup(resolved.drug)
	if !ok {
		// Drug vocabulary is derived from the profile table, so a resolved
		// drug without a profile means the artifacts are inconsistent.
		metrics.RecordPredictionError("PREDICTION_FAILED")
		return nil, errors.PredictionFailed(fmt.Errorf("no profile for resolved drug %q", resolved.drug))
	}

	// Missing weight becomes the documented default before synthesis
	patient := dosage.PatientContext{
		Age:           *req.Age,
		Weight:        float64ValueOr(req.Weight, dosage.DefaultWeightKg),
		Gender:        resolved.gender,
		AdmissionType: resolved.admissionType,
		Diagnosis:     resolved.diagnosis,
	}
	event := dosage.AdministrationEvent{
		Drug:      resolved.drug,
		Route:     resolved.route,
		DoseValue: req.DoseValue,
		DoseUnit:  req.DoseUnit,
	}

	features, err := dosage.Synthesize(patient, event, profile)
	if err != nil {
		metrics.RecordPredictionError("PREDICTION_FAILED")
		return nil, errors.PredictionFailed(err)
	}

	pred, err := bundle.Model.Predict(ctx, classifier.FeatureVector{
		Age:             patient.Age,
		Weight:          patient.Weight,
		RouteRisk:       features.RouteRisk,
		DiagnosisRisk:   features.DiagnosisRisk,
		RiskInteraction: features.RiskInteraction,
		BMI:             features.BMI,
		AgeGroup:        features.AgeGroup,
		WeightGroup:     features.WeightGroup,
		Drug:            resolved.drug,
		Route:           resolved.route,
		Gender:          resolved.gender,
		AdmissionType:   resolved.admissionType,
		Diagnosis:       resolved.diagnosis,
	})
	if err != nil {
		log.Printf("classifier error: %v", err)
		metrics.RecordPredictionError("PREDICTION_FAILED")
		return nil, errors.PredictionFailed(err)
	}
	if err := pred.Validate(); err != nil {
		log.Printf("classifier returned malformed prediction: %v", err)
		metrics.RecordPredictionError("PREDICTION_FAILED")
		return nil, errors.PredictionFailed(err)
	}

	result := &DosageClassification{
		DosageClass:    pred.Class,
		DosageLabel:    dosageLabels[pred.Class],
		Confidence:     pred.Confidence(),
		Recommendation: composeRecommendation(pred.Class, patient.Age),
		NormalRange:    fmt.Sprintf("%v - %v %s", profile.MinDose, profile.MaxDose, profile.Unit),
	}

	s.record(ctx, patient, event, result)
	metrics.RecordPrediction(result.DosageClass, result.Confidence, time.Since(start))

	return result, nil
}

// resolvedFields carries the canonical categorical values for one request
type resolvedFields struct {
	drug          string
	route         string
	gender        string
	admissionType string
	diagnosis     string
}

// resolveCategories resolves every categorical field independently and
// aggregates all failures into a single error.
func (s *Service) resolveCategories(req PredictRequest, vocabs artifacts.Vocabularies) (resolvedFields, error) {
	fields := []vocab.Field{
		{Name: "drug", Input: req.Drug, Values: vocabs.Drugs},
		{Name: "route", Input: req.Route, Values: vocabs.Routes},
		{Name: "gender", Input: req.Gender, Values: vocabs.Genders},
		{Name: "admission_type", Input: req.AdmissionType, Values: vocabs.AdmissionTypes},
		{Name: "diagnosis", Input: req.Diagnosis, Values: vocabs.Diagnoses, Optional: true},
	}

	resolved, failures := s.resolver.ResolveAll(fields)

	for name, match := range resolved {
		if !match.Exact {
			metrics.RecordFuzzyResolution(name)
		}
	}

	if len(failures) > 0 {
		details := make(map[string]string, len(failures))
		for _, f := range failures {
			metrics.RecordResolutionFailure(f.Field)
			details[f.Field] = f.Input
		}
		return resolvedFields{}, errors.UnknownCategory(details)
	}

	return resolvedFields{
		drug:          resolved["drug"].Value,
		route:         resolved["route"].Value,
		gender:        resolved["gender"].Value,
		admissionType: resolved["admission_type"].Value,
		diagnosis:     resolved["diagnosis"].Value,
	}, nil
}

// record persists the prediction and publishes the audit event, best effort
func (s *Service) record(ctx context.Context, patient dosage.PatientContext, event dosage.AdministrationEvent, result *DosageClassification) {
	rec := &Record{
		ID:            uuid.New(),
		Age:           patient.Age,
		Weight:        patient.Weight,
		Drug:          event.Drug,
		Route:         event.Route,
		Gender:        patient.Gender,
		AdmissionType: patient.AdmissionType,
		Diagnosis:     patient.Diagnosis,
		DosageClass:   result.DosageClass,
		DosageLabel:   result.DosageLabel,
		Confidence:    result.Confidence,
		CreatedAt:     time.Now().UTC(),
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, rec); err != nil {
			log.Printf("Warning: failed to store prediction %s: %v", rec.ID, err)
		}
	}

	if s.bus != nil {
		evt := events.NewEvent("prediction.completed", "dosage-service", rec).WithActor("dosage-service", "system")
		if err := s.bus.Publish(ctx, evt); err != nil {
			log.Printf("Warning: failed to publish prediction event %s: %v", rec.ID, err)
		}
	}
}

// KnownDrugs returns the full drug-name vocabulary
func (s *Service) KnownDrugs() ([]string, error) {
	bundle, ok := s.store.Bundle()
	if !ok {
		return nil, errors.ArtifactsUnavailable()
	}
	return append([]string(nil), bundle.Vocabularies.Drugs...), nil
}

// Health reports whether the shared artifacts are loaded
func (s *Service) Health() HealthStatus {
	if bundle, ok := s.store.Bundle(); ok {
		return HealthStatus{
			Status:  "ok",
			Message: fmt.Sprintf("Service is healthy (model: %s)", bundle.ModelName),
		}
	}
	return HealthStatus{Status: "error", Message: "Model not loaded"}
}

// validateRequest checks required fields and shapes before any processing
func validateRequest(req PredictRequest) error {
	details := map[string]string{}

	if req.Age == nil {
		details["age"] = "age is required"
	} else if *req.Age < 0 {
		details["age"] = "age must not be negative"
	}
	if req.Weight != nil && *req.Weight <= 0 {
		details["weight"] = "weight must be positive"
	}
	if req.DoseValue < 0 {
		details["dose_val_rx"] = "dose must not be negative"
	}
	if req.Drug == "" {
		details["drug"] = "drug is required"
	}
	if req.Route == "" {
		details["route"] = "route is required"
	}
	if req.Gender == "" {
		details["gender"] = "gender is required"
	}
	if req.AdmissionType == "" {
		details["admission_type"] = "admission_type is required"
	}

	if len(details) > 0 {
		return errors.Validation("validation failed", details)
	}
	return nil
}

func float64ValueOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
