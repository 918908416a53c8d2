package engine

import (
	"testing"

	"github.com/clinai/neurodiag/internal/domain"
)

func TestMergeDiagnosesHigherConfidenceWins(t *testing.T) {
	forward := []domain.Diagnosis{
		domain.NewDiagnosis("Influenza", domain.TruthValue{Strength: 0.5, Confidence: 0.6}),
	}
	backward := []domain.Diagnosis{
		domain.NewDiagnosis("Influenza", domain.TruthValue{Strength: 0.4, Confidence: 0.9}),
	}

	merged := MergeDiagnoses(forward, backward)

	if len(merged) != 1 {
		t.Fatalf("merged = %d entries, want 1", len(merged))
	}
	if merged[0].Confidence != 0.9 {
		t.Errorf("Confidence = %v, the higher-confidence entry should survive", merged[0].Confidence)
	}
}

func TestMergeDiagnosesTieKeepsEarlierSource(t *testing.T) {
	first := []domain.Diagnosis{
		domain.NewDiagnosis("Influenza", domain.TruthValue{Strength: 0.5, Confidence: 0.8}),
	}
	second := []domain.Diagnosis{
		domain.NewDiagnosis("Influenza", domain.TruthValue{Strength: 0.9, Confidence: 0.8}),
	}

	merged := MergeDiagnoses(first, second)

	if merged[0].Strength != 0.5 {
		t.Errorf("Strength = %v, a confidence tie should keep the earlier source", merged[0].Strength)
	}
}

func TestMergeDiagnosesRanksAcrossSources(t *testing.T) {
	a := []domain.Diagnosis{
		domain.NewDiagnosis("CommonCold", domain.TruthValue{Strength: 0.3, Confidence: 0.5}),
	}
	b := []domain.Diagnosis{
		domain.NewDiagnosis("Influenza", domain.TruthValue{Strength: 0.8, Confidence: 0.9}),
		domain.NewDiagnosis("Angina", domain.TruthValue{Strength: 0.2, Confidence: 0.4}),
	}

	merged := MergeDiagnoses(a, b)

	want := []domain.Symbol{"Influenza", "CommonCold", "Angina"}
	if len(merged) != len(want) {
		t.Fatalf("merged = %d entries, want %d", len(merged), len(want))
	}
	for i, disease := range want {
		if merged[i].Disease != disease {
			t.Errorf("position %d = %s, want %s", i, merged[i].Disease, disease)
		}
	}
}

func TestMergeDiagnosesCommutative(t *testing.T) {
	a := []domain.Diagnosis{
		domain.NewDiagnosis("Influenza", domain.TruthValue{Strength: 0.5, Confidence: 0.6}),
		domain.NewDiagnosis("CommonCold", domain.TruthValue{Strength: 0.3, Confidence: 0.8}),
	}
	b := []domain.Diagnosis{
		domain.NewDiagnosis("Influenza", domain.TruthValue{Strength: 0.4, Confidence: 0.9}),
		domain.NewDiagnosis("Angina", domain.TruthValue{Strength: 0.2, Confidence: 0.4}),
	}

	ab := MergeDiagnoses(a, b)
	ba := MergeDiagnoses(b, a)

	if len(ab) != len(ba) {
		t.Fatalf("lengths differ: %d vs %d", len(ab), len(ba))
	}
	for i := range ab {
		if ab[i] != ba[i] {
			t.Errorf("position %d differs: %+v vs %+v", i, ab[i], ba[i])
		}
	}
}

func TestMergeDiagnosesEmpty(t *testing.T) {
	if got := MergeDiagnoses(nil, nil); len(got) != 0 {
		t.Errorf("merged = %v, want empty", got)
	}
}

func TestProofsToDiagnoses(t *testing.T) {
	proofs := []domain.Proof{
		{TV: domain.TruthValue{Strength: 0.3, Confidence: 0.5}},
		{TV: domain.TruthValue{Strength: 0.8, Confidence: 0.9}},
	}

	ds := ProofsToDiagnoses("Influenza", proofs)

	if len(ds) != 2 {
		t.Fatalf("diagnoses = %d, want one per proof", len(ds))
	}
	if ds[0].Score < ds[1].Score {
		t.Error("diagnoses should be ranked descending by score")
	}
	for _, d := range ds {
		if d.Disease != "Influenza" {
			t.Errorf("Disease = %s, want Influenza", d.Disease)
		}
	}
}

func TestExplainAvailability(t *testing.T) {
	withProofs := Explain("Influenza", []domain.Proof{{TV: domain.TruthValue{Strength: 0.5, Confidence: 0.5}}})
	if !withProofs.Available {
		t.Error("Available = false with proofs present")
	}

	without := Explain("Gout", nil)
	if without.Available {
		t.Error("Available = true with no supporting derivation")
	}
	if without.Disease != "Gout" {
		t.Errorf("Disease = %s, want Gout", without.Disease)
	}
}
