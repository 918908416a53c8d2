package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinai/neurodiag/internal/domain"
)

// completer is the minimal surface a provider backend exposes: one prompt
// in, one completion out.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// Client adapts a provider backend to the extraction and narration
// interfaces the dialogue layer consumes.
type Client struct {
	backend completer
}

var (
	_ domain.Extractor = (*Client)(nil)
	_ domain.Narrator  = (*Client)(nil)
)

func (c *Client) ExtractSymptoms(ctx context.Context, history []domain.Message, input string) (*domain.ExtractionResult, error) {
	prompt := fmt.Sprintf(extractionPrompt, renderHistory(history), input)

	raw, err := c.backend.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extract symptoms: %w", err)
	}
	return ParseExtraction(raw)
}

func (c *Client) ClarificationQuestion(ctx context.Context, history []domain.Message, ambiguousTerms []string) (string, error) {
	prompt := fmt.Sprintf(clarificationPrompt, renderHistory(history), strings.Join(ambiguousTerms, ", "))

	question, err := c.backend.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("clarification question: %w", err)
	}
	return strings.TrimSpace(question), nil
}

func (c *Client) NarrateDiagnoses(ctx context.Context, diagnoses []domain.Diagnosis) (string, error) {
	var sb strings.Builder
	for i, d := range diagnoses {
		fmt.Fprintf(&sb, "%d. %s (strength %.3f, confidence %.3f)\n", i+1, d.Disease, d.Strength, d.Confidence)
	}

	prompt := fmt.Sprintf(narrationPrompt, sb.String())

	text, err := c.backend.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("narrate diagnoses: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func renderHistory(history []domain.Message) string {
	if len(history) == 0 {
		return "(no prior turns)"
	}
	var sb strings.Builder
	for _, msg := range history {
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
