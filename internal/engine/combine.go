package engine

import "github.com/clinai/neurodiag/internal/domain"

// MergeDiagnoses merges diagnosis lists from multiple sources into one
// deduplicated, ranked list keyed by disease. When the same disease appears
// in more than one source, the entry with the higher confidence survives;
// confidence ties keep the earlier source. The result is sorted descending
// by score with lexicographic disease ties.
func MergeDiagnoses(sources ...[]domain.Diagnosis) []domain.Diagnosis {
	best := make(map[domain.Symbol]domain.Diagnosis)
	var order []domain.Symbol

	for _, source := range sources {
		for _, d := range source {
			existing, ok := best[d.Disease]
			if !ok {
				best[d.Disease] = d
				order = append(order, d.Disease)
				continue
			}
			if d.Confidence > existing.Confidence {
				best[d.Disease] = d
			}
		}
	}

	out := make([]domain.Diagnosis, 0, len(order))
	for _, disease := range order {
		out = append(out, best[disease])
	}
	domain.SortDiagnoses(out)
	return out
}

// ProofsToDiagnoses converts backward-chaining proofs into diagnosis entries
// that all share the target disease, ranked like any other diagnosis list.
func ProofsToDiagnoses(disease domain.Symbol, proofs []domain.Proof) []domain.Diagnosis {
	out := make([]domain.Diagnosis, 0, len(proofs))
	for _, p := range proofs {
		out = append(out, domain.NewDiagnosis(disease, p.TV))
	}
	domain.SortDiagnoses(out)
	return out
}

// Explain assembles the structured explanation for a disease from its
// backward-chaining proofs. Available is false when nothing supports it.
func Explain(disease domain.Symbol, proofs []domain.Proof) domain.Explanation {
	return domain.Explanation{
		Disease:   disease,
		Available: len(proofs) > 0,
		Proofs:    proofs,
	}
}
