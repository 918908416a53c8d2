package engine

import (
	"testing"

	"github.com/clinai/neurodiag/internal/domain"
)

const patient = domain.Symbol("Patient_test")

func fact(pred domain.Predicate, object string, strength, confidence float64) domain.Fact {
	return domain.Fact{
		Predicate: pred,
		Subject:   patient,
		Object:    domain.Symbol(object),
		TV:        domain.TruthValue{Strength: strength, Confidence: confidence},
	}
}

func TestAssertOverwritesTriple(t *testing.T) {
	s := NewFactStore()
	s.Assert(fact(domain.PredicateHasSymptom, "Fever", 0.5, 0.5))
	s.Assert(fact(domain.PredicateHasSymptom, "Fever", 0.9, 0.8))

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	got, ok := s.Get(domain.PredicateHasSymptom, patient, "Fever")
	if !ok {
		t.Fatal("fact not found after assert")
	}
	if got.TV.Strength != 0.9 {
		t.Errorf("Strength = %v, want 0.9 (last write wins)", got.TV.Strength)
	}
}

func TestRetract(t *testing.T) {
	s := NewFactStore()
	f := fact(domain.PredicateHasSymptom, "Fever", 0.5, 0.5)
	s.Assert(f)
	s.Retract(f)
	s.Retract(f) // idempotent

	if s.Len() != 0 {
		t.Errorf("Len() = %d after retract, want 0", s.Len())
	}
}

func TestResetPatientKeepsRiskFactors(t *testing.T) {
	s := NewFactStore()
	s.Assert(fact(domain.PredicateHasSymptom, "Fever", 0.5, 0.5))
	s.Assert(fact(domain.PredicatePossibleDisease, "Influenza", 0.4, 0.5))
	s.Assert(fact(domain.PredicateRiskFactor, "Smoking", 1, 0.9))

	other := fact(domain.PredicateHasSymptom, "Cough", 0.5, 0.5)
	other.Subject = "Patient_other"
	s.Assert(other)

	s.ResetPatient(patient)

	if _, ok := s.Get(domain.PredicateHasSymptom, patient, "Fever"); ok {
		t.Error("symptom survived reset")
	}
	if _, ok := s.Get(domain.PredicatePossibleDisease, patient, "Influenza"); ok {
		t.Error("derived disease survived reset")
	}
	if _, ok := s.Get(domain.PredicateRiskFactor, patient, "Smoking"); !ok {
		t.Error("risk factor should survive reset")
	}
	if _, ok := s.Get(domain.PredicateHasSymptom, "Patient_other", "Cough"); !ok {
		t.Error("other patient's fact should survive reset")
	}
}

func TestQueryBindsVariables(t *testing.T) {
	s := NewFactStore()
	s.Assert(fact(domain.PredicateHasSymptom, "Fever", 0.5, 0.5))
	s.Assert(fact(domain.PredicateHasSymptom, "Cough", 0.6, 0.5))
	s.Assert(fact(domain.PredicateRiskFactor, "Smoking", 1, 0.9))

	p := domain.Pattern{
		Predicate: domain.PredicateHasSymptom,
		Subject:   domain.Const(patient),
		Object:    domain.Variable("s"),
	}

	var objects []domain.Symbol
	for m := range s.Query(p, nil) {
		objects = append(objects, m.Binding["s"])
	}

	// First-assertion order.
	want := []domain.Symbol{"Fever", "Cough"}
	if len(objects) != len(want) {
		t.Fatalf("matches = %v, want %v", objects, want)
	}
	for i := range want {
		if objects[i] != want[i] {
			t.Errorf("match %d = %s, want %s", i, objects[i], want[i])
		}
	}
}

func TestQueryRespectsExistingBinding(t *testing.T) {
	s := NewFactStore()
	s.Assert(fact(domain.PredicateHasSymptom, "Fever", 0.5, 0.5))
	s.Assert(fact(domain.PredicateHasSymptom, "Cough", 0.6, 0.5))

	p := domain.Pattern{
		Predicate: domain.PredicateHasSymptom,
		Subject:   domain.Const(patient),
		Object:    domain.Variable("s"),
	}
	bind := domain.Binding{"s": "Cough"}

	count := 0
	for m := range s.Query(p, bind) {
		count++
		if m.Fact.Object != "Cough" {
			t.Errorf("matched %s, binding should restrict to Cough", m.Fact.Object)
		}
	}
	if count != 1 {
		t.Errorf("matches = %d, want 1", count)
	}
	if bind["s"] != "Cough" {
		t.Error("input binding must not be mutated")
	}
}

func TestQueryIsRestartable(t *testing.T) {
	s := NewFactStore()
	s.Assert(fact(domain.PredicateHasSymptom, "Fever", 0.5, 0.5))
	s.Assert(fact(domain.PredicateHasSymptom, "Cough", 0.6, 0.5))

	p := domain.Pattern{
		Predicate: domain.PredicateHasSymptom,
		Subject:   domain.Const(patient),
		Object:    domain.Variable("s"),
	}
	seq := s.Query(p, nil)

	// Early-terminated pass, then a full pass over the same sequence.
	for range seq {
		break
	}
	count := 0
	for range seq {
		count++
	}
	if count != 2 {
		t.Errorf("second pass yielded %d matches, want 2", count)
	}
}
