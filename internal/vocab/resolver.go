package vocab

// Vocabulary is the ordered set of known values for one categorical field
type Vocabulary []string

// Contains reports whether the exact value is in the vocabulary
func (v Vocabulary) Contains(value string) bool {
	for _, entry := range v {
		if entry == value {
			return true
		}
	}
	return false
}

// DefaultThreshold is the minimum similarity for a fuzzy match to resolve
const DefaultThreshold = 0.7

// Match is the result of resolving one categorical value
type Match struct {
	Value      string  `json:"value"`
	Similarity float64 `json:"similarity"`
	Exact      bool    `json:"exact"`
}

// FieldFailure records one categorical field that could not be resolved
type FieldFailure struct {
	Field string `json:"field"`
	Input string `json:"input_value"`
}

// Field is one categorical input to resolve against its vocabulary
type Field struct {
	Name     string
	Input    string
	Values   Vocabulary
	Optional bool
}

// Resolver maps free-text categorical values onto a vocabulary, exactly or by
// fuzzy fallback. Stateless and safe for concurrent use.
type Resolver struct {
	threshold  float64
	similarity SimilarityFunc
}

// NewResolver creates a resolver with the default threshold and similarity
func NewResolver() *Resolver {
	return &Resolver{threshold: DefaultThreshold, similarity: Ratio}
}

// NewResolverWith creates a resolver with a custom threshold and similarity
func NewResolverWith(threshold float64, similarity SimilarityFunc) *Resolver {
	if similarity == nil {
		similarity = Ratio
	}
	return &Resolver{threshold: threshold, similarity: similarity}
}

// Resolve maps input onto the vocabulary. An exact (case-sensitive) match
// returns immediately with similarity 1.0; otherwise the entry with the
// highest similarity wins, provided it exceeds the threshold.
func (r *Resolver) Resolve(input string, values Vocabulary) (Match, bool) {
	for _, entry := range values {
		if entry == input {
			return Match{Value: entry, Similarity: 1.0, Exact: true}, true
		}
	}

	best := Match{}
	for _, entry := range values {
		if ratio := r.similarity(input, entry); ratio > best.Similarity {
			best = Match{Value: entry, Similarity: ratio}
		}
	}

	if best.Similarity > r.threshold {
		return best, true
	}
	return Match{}, false
}

// ResolveAll resolves every field independently and aggregates all failures.
// It never stops at the first unresolved field: the caller gets the complete
// list in one pass. Optional fields with empty input are skipped entirely.
func (r *Resolver) ResolveAll(fields []Field) (map[string]Match, []FieldFailure) {
	resolved := make(map[string]Match, len(fields))
	var failures []FieldFailure

	for _, f := range fields {
		if f.Optional && f.Input == "" {
			continue
		}

		match, ok := r.Resolve(f.Input, f.Values)
		if !ok {
			failures = append(failures, FieldFailure{Field: f.Name, Input: f.Input})
			continue
		}
		resolved[f.Name] = match
	}

	return resolved, failures
}
