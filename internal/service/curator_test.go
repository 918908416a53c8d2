package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clinai/neurodiag/internal/domain"
	"go.uber.org/zap"
)

type mockNarrator struct {
	text string
	err  error
}

func (m *mockNarrator) NarrateDiagnoses(_ context.Context, _ []domain.Diagnosis) (string, error) {
	return m.text, m.err
}

func sampleDiagnoses() []domain.Diagnosis {
	return []domain.Diagnosis{
		domain.NewDiagnosis("MyocardialInfarction", domain.TruthValue{Strength: 0.5, Confidence: 0.9}),
		domain.NewDiagnosis("Angina", domain.TruthValue{Strength: 0.27, Confidence: 0.9}),
	}
}

func TestComposeEmptyDiagnoses(t *testing.T) {
	svc := NewCuratorService(nil, zap.NewNop())

	got := svc.Compose(context.Background(), nil)
	if got != noFindingsMessage {
		t.Errorf("Compose() = %q, want the no-findings message", got)
	}
}

func TestComposeTemplateWithoutNarrator(t *testing.T) {
	svc := NewCuratorService(nil, zap.NewNop())

	got := svc.Compose(context.Background(), sampleDiagnoses())
	if !strings.Contains(got, "MyocardialInfarction") || !strings.Contains(got, "Angina") {
		t.Errorf("Compose() = %q, want every disease listed", got)
	}
	if !strings.Contains(got, "clinician") {
		t.Errorf("Compose() = %q, want the clinician disclaimer", got)
	}
}

func TestComposeDelegatesToNarrator(t *testing.T) {
	narrator := &mockNarrator{text: "It could be heart-related; please see a doctor soon."}
	svc := NewCuratorService(narrator, zap.NewNop())

	got := svc.Compose(context.Background(), sampleDiagnoses())
	if got != narrator.text {
		t.Errorf("Compose() = %q, want the narrated text", got)
	}
}

func TestComposeFallsBackOnNarratorFailure(t *testing.T) {
	narrator := &mockNarrator{err: errors.New("provider unreachable")}
	svc := NewCuratorService(narrator, zap.NewNop())

	got := svc.Compose(context.Background(), sampleDiagnoses())
	if !strings.Contains(got, "MyocardialInfarction") {
		t.Errorf("Compose() = %q, want the template fallback", got)
	}
}
