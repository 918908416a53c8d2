package domain

import "math"

// TVEpsilon bounds floating-point comparisons on truth values. Two truth
// values closer than this are considered identical, which keeps fixpoint
// iteration from churning on rounding noise.
const TVEpsilon = 1e-9

// TruthValue attaches graded uncertainty to a proposition.
// Strength is the degree to which the proposition holds; Confidence is the
// certainty in that estimate. Both are hard-bounded to [0,1].
type TruthValue struct {
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
}

// NeutralTruthValue is the fallback for malformed truth-value payloads.
func NeutralTruthValue() TruthValue {
	return TruthValue{Strength: 0.5, Confidence: 0.5}
}

// Valid reports whether both components are within [0,1].
func (tv TruthValue) Valid() bool {
	return tv.Strength >= 0 && tv.Strength <= 1 &&
		tv.Confidence >= 0 && tv.Confidence <= 1 &&
		!math.IsNaN(tv.Strength) && !math.IsNaN(tv.Confidence)
}

// Clamp forces both components into [0,1].
func (tv TruthValue) Clamp() TruthValue {
	return TruthValue{
		Strength:   clamp01(tv.Strength),
		Confidence: clamp01(tv.Confidence),
	}
}

// Score is the ranking key for diagnoses: strength times confidence.
func (tv TruthValue) Score() float64 {
	return tv.Strength * tv.Confidence
}

// Equal compares two truth values within TVEpsilon.
func (tv TruthValue) Equal(other TruthValue) bool {
	return math.Abs(tv.Strength-other.Strength) < TVEpsilon &&
		math.Abs(tv.Confidence-other.Confidence) < TVEpsilon
}

// CombineConjunction merges the truth values of an antecedent conjunction:
// product of strengths scaled by the rule prior, minimum of confidences.
// This is the combinator the knowledge base uses for every rule.
func CombineConjunction(tvs []TruthValue, prior float64) TruthValue {
	if len(tvs) == 0 {
		return TruthValue{}
	}
	strength := prior
	confidence := 1.0
	for _, tv := range tvs {
		strength *= tv.Strength
		if tv.Confidence < confidence {
			confidence = tv.Confidence
		}
	}
	return TruthValue{Strength: strength, Confidence: confidence}.Clamp()
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
