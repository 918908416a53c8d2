package engine

import (
	"context"

	"github.com/clinai/neurodiag/internal/domain"
	"go.uber.org/zap"
)

// DefaultMaxIterations bounds forward-chaining fixpoint iteration. The rule
// language permits cycles, so an unbounded loop could run forever; hitting
// the bound yields a partial result, not an error.
const DefaultMaxIterations = 64

// ForwardResult carries the diagnoses derived by one forward-chaining run.
type ForwardResult struct {
	Diagnoses  []domain.Diagnosis
	Iterations int
	// Bounded is true when the run stopped on the iteration bound or the
	// context deadline instead of a genuine fixpoint. The diagnosis list is
	// then a best-effort partial result.
	Bounded bool
}

// ForwardChainer applies the rule base to a fact store until no new or
// materially changed facts are derivable.
type ForwardChainer struct {
	rules         *domain.RuleBase
	logger        *zap.Logger
	maxIterations int
}

func NewForwardChainer(rules *domain.RuleBase, logger *zap.Logger) *ForwardChainer {
	return &ForwardChainer{
		rules:         rules,
		logger:        logger,
		maxIterations: DefaultMaxIterations,
	}
}

// SetMaxIterations overrides the fixpoint iteration bound.
func (fc *ForwardChainer) SetMaxIterations(n int) {
	if n > 0 {
		fc.maxIterations = n
	}
}

// Run derives every possibleDisease fact reachable for the patient, applies
// the one-shot risk-adjustment pass, and returns the ranked diagnosis list.
// The caller must hold the session lock for the store.
func (fc *ForwardChainer) Run(ctx context.Context, store *FactStore, patient domain.Symbol) ForwardResult {
	result := ForwardResult{}

	for result.Iterations < fc.maxIterations {
		if ctx.Err() != nil {
			result.Bounded = true
			fc.logger.Warn("forward chaining stopped on deadline",
				zap.String("patient", patient.String()),
				zap.Int("iterations", result.Iterations))
			break
		}

		changed := false
		for _, rule := range fc.rules.Rules {
			if fc.applyRule(store, patient, rule) {
				changed = true
			}
		}
		result.Iterations++

		if !changed {
			break
		}
		if result.Iterations == fc.maxIterations {
			result.Bounded = true
			fc.logger.Warn("forward chaining hit iteration bound",
				zap.String("patient", patient.String()),
				zap.Int("bound", fc.maxIterations))
		}
	}

	fc.applyRiskAdjustments(store, patient)

	result.Diagnoses = CollectDiagnoses(store, patient)
	return result
}

// applyRule asserts every consequent derivable from the rule's antecedent
// matches. Returns true when a fact was new or changed beyond epsilon.
func (fc *ForwardChainer) applyRule(store *FactStore, patient domain.Symbol, rule domain.Rule) bool {
	type candidate struct {
		binding domain.Binding
		support []domain.Fact
	}
	candidates := []candidate{{binding: domain.Binding{}}}

	for _, ant := range rule.Antecedents {
		var next []candidate
		pattern := domain.Pattern{
			Predicate: ant.Predicate,
			Subject:   domain.Const(patient),
			Object:    ant.Object,
		}
		for _, c := range candidates {
			for m := range store.Query(pattern, c.binding) {
				support := make([]domain.Fact, len(c.support), len(c.support)+1)
				copy(support, c.support)
				next = append(next, candidate{
					binding: m.Binding,
					support: append(support, m.Fact),
				})
			}
		}
		candidates = next
		if len(candidates) == 0 {
			return false
		}
	}

	changed := false
	for _, c := range candidates {
		object, ground := c.binding.Resolve(rule.ConsequentObject)
		if !ground {
			fc.logger.Warn("rule consequent not ground, skipping",
				zap.String("rule", rule.Name))
			continue
		}

		tvs := make([]domain.TruthValue, len(c.support))
		for i, f := range c.support {
			tvs[i] = f.TV
		}
		derived := domain.Fact{
			Predicate: rule.Consequent,
			Subject:   patient,
			Object:    object,
			TV:        domain.CombineConjunction(tvs, rule.Prior),
		}

		if existing, ok := store.Get(derived.Predicate, derived.Subject, derived.Object); ok && existing.TV.Equal(derived.TV) {
			continue
		}
		store.Assert(derived)
		changed = true
	}
	return changed
}

// applyRiskAdjustments rescales derived disease strengths using the
// patient's riskFactor facts. Runs once after fixpoint, never iterated.
func (fc *ForwardChainer) applyRiskAdjustments(store *FactStore, patient domain.Symbol) {
	for _, adj := range fc.rules.Adjustments {
		if _, ok := store.Get(domain.PredicateRiskFactor, patient, adj.RiskFactor); !ok {
			continue
		}
		disease, ok := store.Get(domain.PredicatePossibleDisease, patient, adj.Disease)
		if !ok {
			continue
		}
		disease.TV.Strength = clamp01(disease.TV.Strength * adj.Factor)
		store.Assert(disease)
		fc.logger.Debug("risk adjustment applied",
			zap.String("patient", patient.String()),
			zap.String("risk_factor", adj.RiskFactor.String()),
			zap.String("disease", adj.Disease.String()),
			zap.Float64("factor", adj.Factor))
	}
}

// CollectDiagnoses converts the patient's possibleDisease facts into a
// ranked diagnosis list.
func CollectDiagnoses(store *FactStore, patient domain.Symbol) []domain.Diagnosis {
	pattern := domain.Pattern{
		Predicate: domain.PredicatePossibleDisease,
		Subject:   domain.Const(patient),
		Object:    domain.Variable("disease"),
	}
	var out []domain.Diagnosis
	for m := range store.Query(pattern, nil) {
		out = append(out, domain.NewDiagnosis(m.Fact.Object, m.Fact.TV))
	}
	domain.SortDiagnoses(out)
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
