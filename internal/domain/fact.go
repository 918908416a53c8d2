package domain

import "fmt"

// Predicate names the relation a fact asserts.
type Predicate string

const (
	PredicateHasSymptom      Predicate = "hasSymptom"
	PredicatePossibleDisease Predicate = "possibleDisease"
	PredicateRiskFactor      Predicate = "riskFactor"
)

// ValidPredicate reports whether p is one of the known predicates.
func ValidPredicate(p string) bool {
	switch Predicate(p) {
	case PredicateHasSymptom, PredicatePossibleDisease, PredicateRiskFactor:
		return true
	}
	return false
}

// Fact is one weighted proposition: predicate(subject, object) with a truth
// value. Subject is always a patient identifier.
type Fact struct {
	Predicate Predicate  `json:"predicate"`
	Subject   Symbol     `json:"subject"`
	Object    Symbol     `json:"object"`
	TV        TruthValue `json:"tv"`
}

// Key identifies a fact triple independent of its truth value. Asserting a
// fact with an existing key overwrites the previous truth value.
func (f Fact) Key() string {
	return string(f.Predicate) + "|" + string(f.Subject) + "|" + string(f.Object)
}

func (f Fact) String() string {
	return fmt.Sprintf("%s(%s, %s) [%.3f %.3f]", f.Predicate, f.Subject, f.Object, f.TV.Strength, f.TV.Confidence)
}

// Term is one slot of a fact template: either a constant symbol or a free
// variable bound during matching.
type Term struct {
	Sym Symbol
	Var string
}

// Const builds a constant term.
func Const(s Symbol) Term { return Term{Sym: s} }

// Variable builds a free-variable term.
func Variable(name string) Term { return Term{Var: name} }

// IsVar reports whether the term is a free variable.
func (t Term) IsVar() bool { return t.Var != "" }

// Pattern is a fact template with possibly free subject/object terms.
type Pattern struct {
	Predicate Predicate
	Subject   Term
	Object    Term
}

// Binding maps free variable names to the symbols they matched.
type Binding map[string]Symbol

// Clone copies a binding so branches of a search cannot interfere.
func (b Binding) Clone() Binding {
	out := make(Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Resolve substitutes the binding into a term, returning the concrete symbol
// and whether the term is fully ground under this binding.
func (b Binding) Resolve(t Term) (Symbol, bool) {
	if !t.IsVar() {
		return t.Sym, true
	}
	s, ok := b[t.Var]
	return s, ok
}
