package domain

import "sort"

// Diagnosis is one ranked disease hypothesis.
type Diagnosis struct {
	Disease    Symbol  `json:"disease"`
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"`
}

// NewDiagnosis builds a diagnosis from a disease and its truth value,
// clamping components so Score stays within [0,1].
func NewDiagnosis(disease Symbol, tv TruthValue) Diagnosis {
	tv = tv.Clamp()
	return Diagnosis{
		Disease:    disease,
		Strength:   tv.Strength,
		Confidence: tv.Confidence,
		Score:      tv.Score(),
	}
}

// SortDiagnoses orders diagnoses descending by score, breaking ties by
// disease identifier so output is deterministic.
func SortDiagnoses(ds []Diagnosis) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Score != ds[j].Score {
			return ds[i].Score > ds[j].Score
		}
		return ds[i].Disease < ds[j].Disease
	})
}

// DerivationStep is one rule application inside a proof.
type DerivationStep struct {
	Rule        string     `json:"rule"`
	Conclusion  Fact       `json:"conclusion"`
	SupportedBy []Fact     `json:"supported_by"`
	TV          TruthValue `json:"tv"`
}

// Proof is one independent derivation of a goal, with the rule applications
// that produced it in leaf-to-root order.
type Proof struct {
	TV    TruthValue       `json:"tv"`
	Steps []DerivationStep `json:"steps"`
}

// Explanation is the structured answer to "why this disease?".
// Available is false when no supporting derivation exists.
type Explanation struct {
	Disease   Symbol  `json:"disease"`
	Available bool    `json:"available"`
	Proofs    []Proof `json:"proofs,omitempty"`
}
