package artifacts

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/medlink/dosage-service/internal/classifier"
	"github.com/medlink/dosage-service/internal/dosage"
	"github.com/medlink/dosage-service/internal/shared/metrics"
	"github.com/medlink/dosage-service/internal/vocab"
)

// Vocabularies holds the known values for each categorical field
type Vocabularies struct {
	Drugs          vocab.Vocabulary
	Routes         vocab.Vocabulary
	Genders        vocab.Vocabulary
	AdmissionTypes vocab.Vocabulary
	Diagnoses      vocab.Vocabulary
}

// Bundle is one consistent snapshot of the shared read-only artifacts:
// drug profiles, vocabularies, and the trained classifier. Immutable once
// built; a reload builds a fresh bundle and swaps it in atomically.
type Bundle struct {
	Profiles     dosage.ProfileTable
	Vocabularies Vocabularies
	Model        classifier.Classifier
	ModelName    string
	LoadedAt     time.Time
}

// ProfileSource supplies drug profiles from an external system. Optional:
// when nil the compiled-in formulary is used.
type ProfileSource interface {
	LoadProfiles(ctx context.Context) (dosage.ProfileTable, error)
}

// Store owns the artifact lifecycle. Either a complete bundle is visible or
// none is; callers never observe partial initialization. There is no
// background reload: recovery is an explicit Load call.
type Store struct {
	modelPath string
	source    ProfileSource

	current atomic.Pointer[Bundle]
}

// NewStore creates an unloaded store
func NewStore(modelPath string, source ProfileSource) *Store {
	return &Store{modelPath: modelPath, source: source}
}

// Load builds a new bundle from the model artifact and profile source and
// swaps it in. On failure any previously loaded bundle stays visible.
func (s *Store) Load(ctx context.Context) error {
	bundle, err := s.build(ctx)
	if err != nil {
		metrics.RecordArtifactReload(false)
		return err
	}

	s.current.Store(bundle)
	metrics.RecordArtifactReload(true)
	return nil
}

func (s *Store) build(ctx context.Context) (*Bundle, error) {
	profiles := dosage.DefaultProfiles()
	if s.source != nil {
		loaded, err := s.source.LoadProfiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load drug profiles: %w", err)
		}
		if len(loaded) > 0 {
			profiles = loaded
		}
	}

	model, err := classifier.LoadModel(s.modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier: %w", err)
	}

	return &Bundle{
		Profiles:     profiles,
		Vocabularies: buildVocabularies(profiles),
		Model:        model,
		ModelName:    model.Name(),
		LoadedAt:     time.Now().UTC(),
	}, nil
}

// Bundle returns the current snapshot, or false when artifacts are unloaded
func (s *Store) Bundle() (*Bundle, bool) {
	b := s.current.Load()
	return b, b != nil
}

// Ready reports whether artifacts are loaded
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// buildVocabularies derives the per-field vocabularies from reference data.
// Entries are sorted for a stable resolution order.
func buildVocabularies(profiles dosage.ProfileTable) Vocabularies {
	drugs := profiles.Names()
	sort.Strings(drugs)

	routes := dosage.Routes()
	sort.Strings(routes)

	diagnoses := dosage.Diagnoses()
	sort.Strings(diagnoses)

	return Vocabularies{
		Drugs:          vocab.Vocabulary(drugs),
		Routes:         vocab.Vocabulary(routes),
		Genders:        vocab.Vocabulary(dosage.Genders),
		AdmissionTypes: vocab.Vocabulary(dosage.AdmissionTypes),
		Diagnoses:      vocab.Vocabulary(diagnoses),
	}
}
