// Package kb loads the declarative knowledge base: inference rules, risk
// adjustments and seed facts. The rule base is loaded once at startup and
// shared read-only by every session; a load failure is fatal and the process
// must not begin serving.
package kb

import (
	"fmt"
	"os"
	"strings"

	"github.com/clinai/neurodiag/internal/domain"
	"gopkg.in/yaml.v3"
)

type ruleFile struct {
	Rules           []ruleSpec           `yaml:"rules"`
	RiskAdjustments []riskAdjustmentSpec `yaml:"risk_adjustments"`
	Facts           []factSpec           `yaml:"facts"`
}

type ruleSpec struct {
	Name  string        `yaml:"name"`
	When  []patternSpec `yaml:"when"`
	Then  patternSpec   `yaml:"then"`
	Prior *float64      `yaml:"prior"`
}

type patternSpec struct {
	Predicate string `yaml:"predicate"`
	Object    string `yaml:"object"`
}

type riskAdjustmentSpec struct {
	RiskFactor string  `yaml:"risk_factor"`
	Disease    string  `yaml:"disease"`
	Factor     float64 `yaml:"factor"`
}

type factSpec struct {
	Predicate  string  `yaml:"predicate"`
	Object     string  `yaml:"object"`
	Strength   float64 `yaml:"strength"`
	Confidence float64 `yaml:"confidence"`
}

// Load reads and validates the knowledge-base file.
func Load(path string) (*domain.RuleBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	rb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("knowledge base %s: %w", path, err)
	}
	return rb, nil
}

// Parse builds a rule base from raw YAML.
func Parse(data []byte) (*domain.RuleBase, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("no rules defined")
	}

	rb := &domain.RuleBase{}
	for i, spec := range file.Rules {
		rule, err := buildRule(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, spec.Name, err)
		}
		rb.Rules = append(rb.Rules, rule)
	}

	for i, spec := range file.RiskAdjustments {
		adj, err := buildAdjustment(spec)
		if err != nil {
			return nil, fmt.Errorf("risk adjustment %d: %w", i, err)
		}
		rb.Adjustments = append(rb.Adjustments, adj)
	}

	for i, spec := range file.Facts {
		fact, err := buildFact(spec)
		if err != nil {
			return nil, fmt.Errorf("fact %d: %w", i, err)
		}
		rb.SeedFacts = append(rb.SeedFacts, fact)
	}

	return rb, nil
}

func buildRule(spec ruleSpec) (domain.Rule, error) {
	if spec.Name == "" {
		return domain.Rule{}, fmt.Errorf("rule name is required")
	}
	if len(spec.When) == 0 {
		return domain.Rule{}, fmt.Errorf("at least one antecedent is required")
	}

	prior := 1.0
	if spec.Prior != nil {
		prior = *spec.Prior
	}
	if prior <= 0 || prior > 1 {
		return domain.Rule{}, fmt.Errorf("prior %v outside (0,1]", prior)
	}

	rule := domain.Rule{Name: spec.Name, Prior: prior}
	for _, w := range spec.When {
		if !domain.ValidPredicate(w.Predicate) {
			return domain.Rule{}, fmt.Errorf("unknown predicate %q", w.Predicate)
		}
		term, err := parseTerm(w.Object)
		if err != nil {
			return domain.Rule{}, err
		}
		rule.Antecedents = append(rule.Antecedents, domain.Antecedent{
			Predicate: domain.Predicate(w.Predicate),
			Object:    term,
		})
	}

	if !domain.ValidPredicate(spec.Then.Predicate) {
		return domain.Rule{}, fmt.Errorf("unknown consequent predicate %q", spec.Then.Predicate)
	}
	rule.Consequent = domain.Predicate(spec.Then.Predicate)
	term, err := parseTerm(spec.Then.Object)
	if err != nil {
		return domain.Rule{}, err
	}
	rule.ConsequentObject = term

	return rule, nil
}

func buildAdjustment(spec riskAdjustmentSpec) (domain.RiskAdjustment, error) {
	rf, err := domain.NewSymbol(spec.RiskFactor)
	if err != nil {
		return domain.RiskAdjustment{}, err
	}
	disease, err := domain.NewSymbol(spec.Disease)
	if err != nil {
		return domain.RiskAdjustment{}, err
	}
	if spec.Factor <= 0 {
		return domain.RiskAdjustment{}, fmt.Errorf("factor must be positive, got %v", spec.Factor)
	}
	return domain.RiskAdjustment{RiskFactor: rf, Disease: disease, Factor: spec.Factor}, nil
}

func buildFact(spec factSpec) (domain.Fact, error) {
	if !domain.ValidPredicate(spec.Predicate) {
		return domain.Fact{}, fmt.Errorf("unknown predicate %q", spec.Predicate)
	}
	object, err := domain.NewSymbol(spec.Object)
	if err != nil {
		return domain.Fact{}, err
	}
	tv := domain.TruthValue{Strength: spec.Strength, Confidence: spec.Confidence}
	if !tv.Valid() {
		return domain.Fact{}, fmt.Errorf("truth value outside [0,1]: %+v", tv)
	}
	// Subject is filled per patient when the fact is seeded into a session.
	return domain.Fact{
		Predicate: domain.Predicate(spec.Predicate),
		Object:    object,
		TV:        tv,
	}, nil
}

// parseTerm interprets a "$name" object as a free variable, anything else as
// a constant symbol validated against the symbolic alphabet.
func parseTerm(raw string) (domain.Term, error) {
	if name, ok := strings.CutPrefix(raw, "$"); ok {
		if name == "" {
			return domain.Term{}, fmt.Errorf("empty variable name")
		}
		return domain.Variable(name), nil
	}
	sym, err := domain.NewSymbol(raw)
	if err != nil {
		return domain.Term{}, err
	}
	return domain.Const(sym), nil
}
