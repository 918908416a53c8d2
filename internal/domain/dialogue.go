package domain

// DialoguePhase is the per-session clarification state.
type DialoguePhase string

const (
	// PhaseCollectingEvidence accepts new symptom descriptions.
	PhaseCollectingEvidence DialoguePhase = "collecting_evidence"
	// PhaseAwaitingClarification means the previous turn was ambiguous and a
	// follow-up question has been asked. The next turn unconditionally
	// returns to collecting; the design is single-shot and does not verify
	// the clarification was actually answered.
	PhaseAwaitingClarification DialoguePhase = "awaiting_clarification"
)

// Symptom is one structured symptom produced by the extraction collaborator.
type Symptom struct {
	Name       Symbol  `json:"name"`
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
}

// TV returns the symptom's truth value.
func (s Symptom) TV() TruthValue {
	return TruthValue{Strength: s.Strength, Confidence: s.Confidence}
}

// ExtractionResult is the single-turn output of the extraction collaborator:
// either a list of structured symptoms, or a non-empty list of ambiguous
// terms with ClarificationNeeded set. Exactly one of the two shapes per turn.
type ExtractionResult struct {
	Symptoms            []Symptom `json:"extracted_symptoms"`
	AmbiguousTerms      []string  `json:"ambiguous_terms"`
	ClarificationNeeded bool      `json:"clarification_needed"`
}

// TurnType tells the caller what kind of response a chat turn produced.
type TurnType string

const (
	TurnClarification TurnType = "clarification"
	TurnDiagnosis     TurnType = "diagnosis"
)

// TurnResult is the outcome of one conversation turn.
type TurnResult struct {
	Type      TurnType    `json:"type"`
	Message   string      `json:"response"`
	Symptoms  []Symptom   `json:"extracted_symptoms,omitempty"`
	Diagnoses []Diagnosis `json:"diagnoses,omitempty"`
	// Bounded is set when forward chaining hit its iteration bound or
	// deadline and the diagnosis list is a best-effort partial result.
	Bounded bool `json:"bounded_computation,omitempty"`
}
