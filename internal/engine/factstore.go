package engine

import (
	"iter"

	"github.com/clinai/neurodiag/internal/domain"
)

// FactStore is the mutable set of weighted propositions for one patient
// session. It has no locking of its own: the owning session handle serializes
// access for the duration of a reset+assert+infer sequence.
type FactStore struct {
	facts map[string]domain.Fact
	// order preserves first-assertion order so queries are deterministic.
	order []string
}

// NewFactStore creates an empty store.
func NewFactStore() *FactStore {
	return &FactStore{facts: make(map[string]domain.Fact)}
}

// Assert inserts a fact, overwriting any existing fact with the same
// (predicate, subject, object) triple. Last write wins; duplicate triples
// never accumulate.
func (s *FactStore) Assert(f domain.Fact) {
	key := f.Key()
	if _, exists := s.facts[key]; !exists {
		s.order = append(s.order, key)
	}
	s.facts[key] = f
}

// Retract removes a fact triple if present.
func (s *FactStore) Retract(f domain.Fact) {
	s.remove(f.Key())
}

// ResetPatient removes the patient's turn-scoped facts (hasSymptom and
// possibleDisease). Risk-factor facts persist for the conversation, matching
// the knowledge base's reset operator.
func (s *FactStore) ResetPatient(patient domain.Symbol) {
	var keep []string
	for _, key := range s.order {
		f := s.facts[key]
		if f.Subject == patient &&
			(f.Predicate == domain.PredicateHasSymptom || f.Predicate == domain.PredicatePossibleDisease) {
			delete(s.facts, key)
			continue
		}
		keep = append(keep, key)
	}
	s.order = keep
}

// Get looks up the fact for an exact triple.
func (s *FactStore) Get(pred domain.Predicate, subject, object domain.Symbol) (domain.Fact, bool) {
	f, ok := s.facts[domain.Fact{Predicate: pred, Subject: subject, Object: object}.Key()]
	return f, ok
}

// Len returns the number of stored facts.
func (s *FactStore) Len() int {
	return len(s.facts)
}

// Match pairs a stored fact with the variable bindings the pattern produced.
type Match struct {
	Fact    domain.Fact
	Binding domain.Binding
}

// Query returns a lazy, finite, restartable sequence of matches for the
// pattern under the given starting binding. The sequence iterates facts in
// first-assertion order. bind may be nil.
func (s *FactStore) Query(p domain.Pattern, bind domain.Binding) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, key := range s.order {
			f := s.facts[key]
			if b, ok := matchFact(f, p, bind); ok {
				if !yield(Match{Fact: f, Binding: b}) {
					return
				}
			}
		}
	}
}

// Facts returns a snapshot of all stored facts in first-assertion order.
func (s *FactStore) Facts() []domain.Fact {
	out := make([]domain.Fact, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.facts[key])
	}
	return out
}

func (s *FactStore) remove(key string) {
	if _, ok := s.facts[key]; !ok {
		return
	}
	delete(s.facts, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// matchFact unifies a concrete fact against a pattern, extending bind with
// any new variable bindings. The input binding is never mutated.
func matchFact(f domain.Fact, p domain.Pattern, bind domain.Binding) (domain.Binding, bool) {
	if f.Predicate != p.Predicate {
		return nil, false
	}
	out := bind.Clone()
	for _, slot := range []struct {
		term domain.Term
		got  domain.Symbol
	}{{p.Subject, f.Subject}, {p.Object, f.Object}} {
		if sym, ground := out.Resolve(slot.term); ground {
			if sym != slot.got {
				return nil, false
			}
			continue
		}
		out[slot.term.Var] = slot.got
	}
	return out, true
}
