package engine

import (
	"context"
	"math"
	"testing"

	"github.com/clinai/neurodiag/internal/domain"
	"go.uber.org/zap"
)

func TestBackwardDirectFact(t *testing.T) {
	bc := NewBackwardChainer(&domain.RuleBase{}, zap.NewNop())
	store := NewFactStore()
	store.Assert(fact(domain.PredicatePossibleDisease, "Angina", 0.4, 0.7))

	result := bc.Prove(context.Background(), store, patient, "Angina")

	if len(result.Proofs) != 1 {
		t.Fatalf("proofs = %d, want 1", len(result.Proofs))
	}
	p := result.Proofs[0]
	if len(p.Steps) != 0 {
		t.Errorf("direct fact proof should have no derivation steps, got %d", len(p.Steps))
	}
	if p.TV.Strength != 0.4 || p.TV.Confidence != 0.7 {
		t.Errorf("TV = %+v, want the stored fact's truth value", p.TV)
	}
}

func TestBackwardRuleDecomposition(t *testing.T) {
	bc := NewBackwardChainer(miRuleBase(), zap.NewNop())
	store := NewFactStore()
	assertMISymptoms(store)

	result := bc.Prove(context.Background(), store, patient, "MyocardialInfarction")

	if result.Bounded {
		t.Error("Bounded = true without a deadline")
	}
	if len(result.Proofs) != 1 {
		t.Fatalf("proofs = %d, want 1", len(result.Proofs))
	}
	p := result.Proofs[0]
	if math.Abs(p.TV.Strength-0.36) > domain.TVEpsilon || math.Abs(p.TV.Confidence-0.9) > domain.TVEpsilon {
		t.Errorf("TV = %+v, want strength 0.36 confidence 0.9", p.TV)
	}
	if len(p.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(p.Steps))
	}
	step := p.Steps[0]
	if step.Rule != "myocardial_infarction" {
		t.Errorf("step rule = %s, want myocardial_infarction", step.Rule)
	}
	if len(step.SupportedBy) != 2 {
		t.Errorf("supporting facts = %d, want 2", len(step.SupportedBy))
	}
}

func TestBackwardIndependentProofs(t *testing.T) {
	bc := NewBackwardChainer(miRuleBase(), zap.NewNop())
	store := NewFactStore()
	assertMISymptoms(store)
	// Direct evidence alongside the rule derivation.
	store.Assert(fact(domain.PredicatePossibleDisease, "MyocardialInfarction", 0.2, 0.5))

	result := bc.Prove(context.Background(), store, patient, "MyocardialInfarction")

	if len(result.Proofs) != 2 {
		t.Fatalf("proofs = %d, want 2 independent derivations", len(result.Proofs))
	}
}

func TestBackwardUnsupportedTarget(t *testing.T) {
	bc := NewBackwardChainer(miRuleBase(), zap.NewNop())
	store := NewFactStore()

	result := bc.Prove(context.Background(), store, patient, "Gout")

	if len(result.Proofs) != 0 {
		t.Errorf("proofs = %d, want 0 for an unsupported target", len(result.Proofs))
	}
	if result.Bounded {
		t.Error("an unsupported goal is an empty result, not a bounded one")
	}
}

func TestBackwardRecursiveSubgoal(t *testing.T) {
	rb := &domain.RuleBase{
		Rules: []domain.Rule{
			{
				Name: "pneumonia",
				Antecedents: []domain.Antecedent{
					{Predicate: domain.PredicateHasSymptom, Object: domain.Const("Fever")},
					{Predicate: domain.PredicateHasSymptom, Object: domain.Const("Cough")},
				},
				Consequent:       domain.PredicatePossibleDisease,
				ConsequentObject: domain.Const("Pneumonia"),
				Prior:            0.5,
			},
			{
				Name: "sepsis",
				Antecedents: []domain.Antecedent{
					{Predicate: domain.PredicatePossibleDisease, Object: domain.Const("Pneumonia")},
				},
				Consequent:       domain.PredicatePossibleDisease,
				ConsequentObject: domain.Const("Sepsis"),
				Prior:            0.8,
			},
		},
	}
	bc := NewBackwardChainer(rb, zap.NewNop())
	store := NewFactStore()
	store.Assert(fact(domain.PredicateHasSymptom, "Fever", 0.9, 0.9))
	store.Assert(fact(domain.PredicateHasSymptom, "Cough", 0.8, 0.95))

	result := bc.Prove(context.Background(), store, patient, "Sepsis")

	if len(result.Proofs) != 1 {
		t.Fatalf("proofs = %d, want 1", len(result.Proofs))
	}
	p := result.Proofs[0]
	// 0.8 prior * (0.5 * 0.9 * 0.8) strength through the subgoal.
	if math.Abs(p.TV.Strength-0.288) > domain.TVEpsilon {
		t.Errorf("Strength = %v, want 0.288", p.TV.Strength)
	}
	if len(p.Steps) != 2 {
		t.Fatalf("steps = %d, want subgoal step plus goal step", len(p.Steps))
	}
	if p.Steps[0].Rule != "pneumonia" || p.Steps[1].Rule != "sepsis" {
		t.Errorf("step order = [%s, %s], want leaf-to-root", p.Steps[0].Rule, p.Steps[1].Rule)
	}
}

func TestBackwardCycleTerminates(t *testing.T) {
	rb := &domain.RuleBase{
		Rules: []domain.Rule{
			{
				Name: "a_from_b",
				Antecedents: []domain.Antecedent{
					{Predicate: domain.PredicatePossibleDisease, Object: domain.Const("CycleB")},
				},
				Consequent:       domain.PredicatePossibleDisease,
				ConsequentObject: domain.Const("CycleA"),
				Prior:            0.9,
			},
			{
				Name: "b_from_a",
				Antecedents: []domain.Antecedent{
					{Predicate: domain.PredicatePossibleDisease, Object: domain.Const("CycleA")},
				},
				Consequent:       domain.PredicatePossibleDisease,
				ConsequentObject: domain.Const("CycleB"),
				Prior:            0.9,
			},
		},
	}
	bc := NewBackwardChainer(rb, zap.NewNop())
	store := NewFactStore()

	result := bc.Prove(context.Background(), store, patient, "CycleA")
	if len(result.Proofs) != 0 {
		t.Errorf("proofs = %d, want 0 from a pure cycle with no facts", len(result.Proofs))
	}
}

func TestBackwardHonorsDeadline(t *testing.T) {
	bc := NewBackwardChainer(miRuleBase(), zap.NewNop())
	store := NewFactStore()
	assertMISymptoms(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := bc.Prove(ctx, store, patient, "MyocardialInfarction")
	if !result.Bounded {
		t.Error("Bounded = false with an expired context")
	}
}
