package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/clinai/neurodiag/internal/domain"
)

// ErrMalformedExtraction means the model response did not parse into a valid
// extraction result. Recoverable: the caller asks the user to rephrase.
var ErrMalformedExtraction = errors.New("malformed extraction result")

type rawSymptom struct {
	Name       string  `json:"name"`
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
}

type rawExtraction struct {
	Symptoms            []rawSymptom `json:"extracted_symptoms"`
	AmbiguousTerms      []string     `json:"ambiguous_terms"`
	ClarificationNeeded bool         `json:"clarification_needed"`
}

// ParseExtraction validates a model response into an ExtractionResult.
// Every symptom identifier is checked against the symbolic alphabet and
// every truth value against [0,1] before anything can reach the engine.
func ParseExtraction(raw string) (*domain.ExtractionResult, error) {
	raw = stripFences(raw)

	var parsed rawExtraction
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	result := &domain.ExtractionResult{
		AmbiguousTerms:      parsed.AmbiguousTerms,
		ClarificationNeeded: parsed.ClarificationNeeded,
	}
	for _, s := range parsed.Symptoms {
		name, err := domain.NewSymbol(s.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: symptom %q: %v", ErrMalformedExtraction, s.Name, err)
		}
		// A malformed truth value degrades to the neutral value; it never
		// fails the turn.
		tv := domain.TruthValue{Strength: s.Strength, Confidence: s.Confidence}
		if !tv.Valid() {
			tv = domain.NeutralTruthValue()
		}
		result.Symptoms = append(result.Symptoms, domain.Symptom{
			Name:       name,
			Strength:   tv.Strength,
			Confidence: tv.Confidence,
		})
	}

	if result.ClarificationNeeded && len(result.AmbiguousTerms) == 0 {
		return nil, fmt.Errorf("%w: clarification flagged without ambiguous terms", ErrMalformedExtraction)
	}
	if !result.ClarificationNeeded {
		result.AmbiguousTerms = nil
	}

	return result, nil
}

// stripFences removes markdown code fences some models wrap around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
