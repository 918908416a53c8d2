package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// mockBackend is a deterministic offline stand-in for development and tests.
// It keyword-matches the user input instead of calling a model.
type mockBackend struct{}

func newMockBackend() *mockBackend {
	return &mockBackend{}
}

var mockSymptomKeywords = map[string]string{
	"chest pain":          "ChestPain",
	"chest":               "ChestPain",
	"short of breath":     "ShortnessOfBreath",
	"shortness of breath": "ShortnessOfBreath",
	"breath":              "ShortnessOfBreath",
	"cough":               "Cough",
	"fever":               "Fever",
	"headache":            "Headache",
	"nausea":              "Nausea",
	"dizzy":               "Dizziness",
	"fatigue":             "Fatigue",
}

var mockVagueTerms = []string{"pain", "unwell", "sick", "bad", "weird"}

func (m *mockBackend) complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, `"clarification_needed"`):
		return m.extraction(prompt), nil
	case strings.Contains(prompt, "Vague terms to clarify"):
		return "Could you tell me where exactly you feel it, and what it feels like?", nil
	default:
		return "Based on your symptoms, a few conditions are possible. These are rule-based hypotheses, not a diagnosis, so please consult a clinician.", nil
	}
}

func (m *mockBackend) extraction(prompt string) string {
	input := prompt
	if idx := strings.Index(prompt, "User input:"); idx >= 0 {
		input = prompt[idx+len("User input:"):]
	}
	if idx := strings.Index(input, "Your task:"); idx >= 0 {
		input = input[:idx]
	}
	input = strings.ToLower(input)

	parsed := rawExtraction{AmbiguousTerms: []string{}, Symptoms: []rawSymptom{}}
	matched := map[string]bool{}
	for keyword, symbol := range mockSymptomKeywords {
		if strings.Contains(input, keyword) && !matched[symbol] {
			matched[symbol] = true
			parsed.Symptoms = append(parsed.Symptoms, rawSymptom{Name: symbol, Strength: 0.8, Confidence: 0.9})
		}
	}

	if len(parsed.Symptoms) == 0 {
		for _, term := range mockVagueTerms {
			if strings.Contains(input, term) {
				parsed.AmbiguousTerms = append(parsed.AmbiguousTerms, term)
			}
		}
		if len(parsed.AmbiguousTerms) > 0 {
			parsed.ClarificationNeeded = true
		}
	}

	out, _ := json.Marshal(parsed)
	return string(out)
}
