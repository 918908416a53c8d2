package engine

import (
	"context"

	"github.com/clinai/neurodiag/internal/domain"
	"go.uber.org/zap"
)

// DefaultMaxDepth bounds the recursion depth of a backward-chaining search.
// The search is bounded, not complete: derivations deeper than this are not
// found.
const DefaultMaxDepth = 16

// BackwardResult carries every independent proof found for a goal.
type BackwardResult struct {
	Proofs []domain.Proof
	// Bounded is true when the search stopped on the context deadline and
	// the proof list may be incomplete.
	Bounded bool
}

// BackwardChainer proves a single target hypothesis by goal-directed
// recursive search, returning all independent derivations rather than only
// the best one. Downstream merging needs every supporting line of evidence.
type BackwardChainer struct {
	rules    *domain.RuleBase
	logger   *zap.Logger
	maxDepth int
}

func NewBackwardChainer(rules *domain.RuleBase, logger *zap.Logger) *BackwardChainer {
	return &BackwardChainer{
		rules:    rules,
		logger:   logger,
		maxDepth: DefaultMaxDepth,
	}
}

// SetMaxDepth overrides the recursion bound.
func (bc *BackwardChainer) SetMaxDepth(n int) {
	if n > 0 {
		bc.maxDepth = n
	}
}

type goalKey struct {
	pred   domain.Predicate
	object domain.Symbol
}

// search holds per-invocation state: memoized goals and the in-progress set
// used to break cycles.
type search struct {
	ctx        context.Context
	store      *FactStore
	patient    domain.Symbol
	memo       map[goalKey][]domain.Proof
	inProgress map[goalKey]bool
	bounded    bool
}

// Prove returns every independent derivation of possibleDisease(patient,
// disease). A goal with no matching facts or rules yields an empty result,
// never an error.
func (bc *BackwardChainer) Prove(ctx context.Context, store *FactStore, patient, disease domain.Symbol) BackwardResult {
	s := &search{
		ctx:        ctx,
		store:      store,
		patient:    patient,
		memo:       make(map[goalKey][]domain.Proof),
		inProgress: make(map[goalKey]bool),
	}
	proofs := bc.prove(s, goalKey{domain.PredicatePossibleDisease, disease}, 0)
	if s.bounded {
		bc.logger.Warn("backward chaining stopped on deadline",
			zap.String("patient", patient.String()),
			zap.String("disease", disease.String()),
			zap.Int("proofs", len(proofs)))
	}
	return BackwardResult{Proofs: proofs, Bounded: s.bounded}
}

func (bc *BackwardChainer) prove(s *search, goal goalKey, depth int) []domain.Proof {
	if s.ctx.Err() != nil {
		s.bounded = true
		return nil
	}
	if depth > bc.maxDepth {
		return nil
	}
	if cached, ok := s.memo[goal]; ok {
		return cached
	}
	// A goal already being proven on the current path is a cycle; treat it
	// as failed for this path without poisoning the memo table.
	if s.inProgress[goal] {
		return nil
	}
	s.inProgress[goal] = true
	defer delete(s.inProgress, goal)

	var proofs []domain.Proof

	// Direct evidence: a matching fact is a complete proof on its own.
	if f, ok := s.store.Get(goal.pred, s.patient, goal.object); ok {
		proofs = append(proofs, domain.Proof{TV: f.TV})
	}

	// Rule decomposition: each rule concluding the goal is an independent
	// derivation alternative (OR).
	for _, rule := range bc.rules.RulesConcluding(goal.pred, goal.object) {
		binding := domain.Binding{}
		if rule.ConsequentObject.IsVar() {
			binding[rule.ConsequentObject.Var] = goal.object
		}
		for _, rp := range bc.proveConjunction(s, rule, rule.Antecedents, binding, depth) {
			tvs := make([]domain.TruthValue, len(rp.leaves))
			for i, leaf := range rp.leaves {
				tvs[i] = leaf.TV
			}
			tv := domain.CombineConjunction(tvs, rule.Prior)
			step := domain.DerivationStep{
				Rule: rule.Name,
				Conclusion: domain.Fact{
					Predicate: goal.pred,
					Subject:   s.patient,
					Object:    goal.object,
					TV:        tv,
				},
				SupportedBy: rp.leaves,
				TV:          tv,
			}
			proofs = append(proofs, domain.Proof{
				TV:    tv,
				Steps: append(rp.steps, step),
			})
		}
	}

	s.memo[goal] = proofs
	return proofs
}

// rulePremise is one way of satisfying a rule body: the leaf facts that
// ground it and the derivation steps of any sub-proofs.
type rulePremise struct {
	leaves []domain.Fact
	steps  []domain.DerivationStep
}

// proveConjunction satisfies a rule body left to right, threading variable
// bindings through the conjuncts (AND). Each antecedent may be satisfied by
// a stored fact or, recursively, by another rule's derivation.
func (bc *BackwardChainer) proveConjunction(s *search, rule domain.Rule, rest []domain.Antecedent, binding domain.Binding, depth int) []rulePremise {
	if len(rest) == 0 {
		return []rulePremise{{}}
	}
	ant := rest[0]
	var out []rulePremise

	appendTail := func(leaf domain.Fact, steps []domain.DerivationStep, b domain.Binding) {
		for _, tail := range bc.proveConjunction(s, rule, rest[1:], b, depth) {
			premise := rulePremise{
				leaves: append([]domain.Fact{leaf}, tail.leaves...),
				steps:  append(append([]domain.DerivationStep{}, steps...), tail.steps...),
			}
			out = append(out, premise)
		}
	}

	// Stored facts satisfying this conjunct.
	pattern := domain.Pattern{
		Predicate: ant.Predicate,
		Subject:   domain.Const(s.patient),
		Object:    ant.Object,
	}
	seen := make(map[domain.Symbol]bool)
	for m := range s.store.Query(pattern, binding) {
		seen[m.Fact.Object] = true
		appendTail(m.Fact, nil, m.Binding)
	}

	// Recursive derivation, only for ground conjuncts that no stored fact
	// already satisfies and that some rule can conclude.
	if object, ground := binding.Resolve(ant.Object); ground && !seen[object] {
		sub := goalKey{ant.Predicate, object}
		for _, sp := range bc.prove(s, sub, depth+1) {
			leaf := domain.Fact{
				Predicate: ant.Predicate,
				Subject:   s.patient,
				Object:    object,
				TV:        sp.TV,
			}
			appendTail(leaf, sp.Steps, binding)
		}
	}

	return out
}
