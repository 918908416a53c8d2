package domain

// Antecedent is one conjunct of a rule body. The subject slot is implicitly
// the patient the rule is being evaluated for; only the object varies.
type Antecedent struct {
	Predicate Predicate
	Object    Term
}

// Rule derives a consequent fact from a conjunction of antecedent facts.
// The consequent truth value is the antecedents' strengths multiplied
// together, scaled by Prior, with the minimum of their confidences.
type Rule struct {
	Name        string
	Antecedents []Antecedent
	Consequent  Predicate
	// ConsequentObject is the derived fact's object, usually a disease symbol.
	// It may be a variable bound by an antecedent.
	ConsequentObject Term
	Prior            float64
}

// RiskAdjustment rescales an already-derived disease strength when the
// patient carries a risk factor. Applied once after forward chaining, never
// iterated.
type RiskAdjustment struct {
	RiskFactor Symbol
	Disease    Symbol
	Factor     float64
}

// RuleBase is the immutable, process-wide rule set. It is loaded once at
// startup and shared by reference across all sessions; no session mutates it.
type RuleBase struct {
	Rules       []Rule
	Adjustments []RiskAdjustment
	// SeedFacts are patient-independent facts shipped with the knowledge
	// base, asserted into each fresh session store (subject left empty,
	// filled with the patient at assert time).
	SeedFacts []Fact
}

// RulesConcluding returns every rule whose consequent can produce the given
// predicate/object pair. Used by the backward chainer for goal decomposition.
func (rb *RuleBase) RulesConcluding(pred Predicate, object Symbol) []Rule {
	var out []Rule
	for _, r := range rb.Rules {
		if r.Consequent != pred {
			continue
		}
		if r.ConsequentObject.IsVar() || r.ConsequentObject.Sym == object {
			out = append(out, r)
		}
	}
	return out
}
