package dosage

// Dosage classes, ordered low to high risk
const (
	ClassLow        = 0
	ClassMediumLow  = 1
	ClassMediumHigh = 2
	ClassHigh       = 3
)

// DefaultRiskInteractionThreshold is the route-risk x diagnosis-risk product
// above which an extra risk increment applies. The value is inherited from the
// clinical rule set; no stated rationale, so it stays configurable.
const DefaultRiskInteractionThreshold = 9

// RuleConfig tunes the rule engine's constants
type RuleConfig struct {
	RiskInteractionThreshold int
}

// DefaultRuleConfig returns the standard rule configuration
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{RiskInteractionThreshold: DefaultRiskInteractionThreshold}
}

// Classify maps derived features to a dosage class in [0,3] using the default
// rule configuration. Deterministic and total: any syntactically valid input
// yields a class, with no error path.
func Classify(f Features, age float64, ageSensitive, isEmergency bool) int {
	return ClassifyWithConfig(f, age, ageSensitive, isEmergency, DefaultRuleConfig())
}

// ClassifyWithConfig applies the clinical rule set:
//
//  1. Base tier from dose percentage: <=25 -> 0, <=50 -> 1, <=75 -> 2, else 3.
//  2. Age factor +1 for age-sensitive drugs given to patients under 12 or
//     over 70, only when the base tier is above 0. Pediatric and geriatric
//     extremes share a single vulnerable-population slot.
//  3. Emergency factor -1 when the administration is an emergency and the
//     base tier is below 3. Clinicians push doses intentionally in
//     emergencies, so the risk flag is suppressed unless already maximal.
//  4. Risk factor: +1 for route risk >= 3, +1 for diagnosis risk >= 3 (each
//     only above base 0), +1 for a risk interaction above the threshold.
//     The three increments are independent and additive.
//  5. The summed adjustment is clamped to [0,3] as the terminal step.
func ClassifyWithConfig(f Features, age float64, ageSensitive, isEmergency bool, cfg RuleConfig) int {
	base := baseTier(f.DosePercentage)

	ageFactor := 0
	if ageSensitive && base > 0 && (age < 12 || age > 70) {
		ageFactor = 1
	}

	emergencyFactor := 0
	if isEmergency && base < ClassHigh {
		emergencyFactor = -1
	}

	riskFactor := 0
	if f.RouteRisk >= 3 && base > 0 {
		riskFactor++
	}
	if f.DiagnosisRisk >= 3 && base > 0 {
		riskFactor++
	}
	if f.RiskInteraction > cfg.RiskInteractionThreshold {
		riskFactor++
	}

	return clampClass(base + ageFactor + emergencyFactor + riskFactor)
}

// baseTier maps dose percentage to the initial class band
func baseTier(percentage float64) int {
	switch {
	case percentage <= 25:
		return ClassLow
	case percentage <= 50:
		return ClassMediumLow
	case percentage <= 75:
		return ClassMediumHigh
	default:
		return ClassHigh
	}
}

func clampClass(c int) int {
	if c < ClassLow {
		return ClassLow
	}
	if c > ClassHigh {
		return ClassHigh
	}
	return c
}
