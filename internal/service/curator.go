package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinai/neurodiag/internal/domain"
	"go.uber.org/zap"
)

const noFindingsMessage = "I couldn't match your symptoms to any condition in my knowledge base. " +
	"Please share more detail, and consider consulting a clinician."

// CuratorService formats ranked diagnoses into user-facing text. When a
// narrator is configured, it delegates the phrasing to the language model
// and falls back to the deterministic template on failure.
type CuratorService struct {
	narrator domain.Narrator
	logger   *zap.Logger
}

func NewCuratorService(narrator domain.Narrator, logger *zap.Logger) *CuratorService {
	return &CuratorService{narrator: narrator, logger: logger}
}

// Compose renders a diagnosis list. Never fails: curation problems degrade
// to the template, not to an error the user sees.
func (s *CuratorService) Compose(ctx context.Context, diagnoses []domain.Diagnosis) string {
	if len(diagnoses) == 0 {
		return noFindingsMessage
	}

	if s.narrator != nil {
		text, err := s.narrator.NarrateDiagnoses(ctx, diagnoses)
		if err == nil && text != "" {
			return text
		}
		s.logger.Warn("narration failed, using template", zap.Error(err))
	}

	return template(diagnoses)
}

func template(diagnoses []domain.Diagnosis) string {
	var sb strings.Builder
	sb.WriteString("Based on your symptoms, possible conditions are: ")
	for i, d := range diagnoses {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s (score %.3f)", d.Disease, d.Score)
	}
	sb.WriteString(". These are rule-based hypotheses, not a medical diagnosis; please consult a clinician.")
	return sb.String()
}
