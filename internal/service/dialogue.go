package service

import (
	"context"
	"errors"
	"time"

	"github.com/clinai/neurodiag/internal/domain"
	"github.com/clinai/neurodiag/internal/llm"
	"github.com/clinai/neurodiag/internal/session"
	"go.uber.org/zap"
)

const (
	rephraseMessage    = "I had trouble understanding that. Could you please rephrase?"
	defaultHistorySize = 30
)

// DefaultInferenceTimeout caps how long one turn may spend inside the
// chainers. Forward chaining is pure computation but a pathological rule set
// could otherwise hold the session lock for a long time.
const DefaultInferenceTimeout = 5 * time.Second

// DialogueService runs the per-turn clarification state machine and
// orchestrates extraction, inference and curation for the chat surface.
//
// All collaborator calls (extraction, clarification, narration) are blocking
// network I/O and happen outside the session lock; only the
// reset+assert+infer sequence runs under it.
type DialogueService struct {
	registry    *session.Registry
	extractor   domain.Extractor
	diagnosis   *DiagnosisService
	curator     *CuratorService
	transcripts domain.TranscriptStore
	logger      *zap.Logger

	inferenceTimeout time.Duration
}

func NewDialogueService(
	registry *session.Registry,
	extractor domain.Extractor,
	diagnosis *DiagnosisService,
	curator *CuratorService,
	transcripts domain.TranscriptStore,
	logger *zap.Logger,
) *DialogueService {
	return &DialogueService{
		registry:         registry,
		extractor:        extractor,
		diagnosis:        diagnosis,
		curator:          curator,
		transcripts:      transcripts,
		logger:           logger,
		inferenceTimeout: DefaultInferenceTimeout,
	}
}

// SetInferenceTimeout overrides the per-turn inference deadline.
func (s *DialogueService) SetInferenceTimeout(d time.Duration) {
	if d > 0 {
		s.inferenceTimeout = d
	}
}

// HandleTurn processes one conversation turn: either a clarification
// question (fact store untouched) or a full diagnosis pass.
func (s *DialogueService) HandleTurn(ctx context.Context, sessionID, text string) (*domain.TurnResult, error) {
	if s.extractor == nil {
		return nil, errors.New("no extraction collaborator configured")
	}

	h, err := s.registry.Acquire(sessionID)
	if err != nil {
		return nil, err
	}

	// Whatever the previous turn was, this turn re-attempts extraction.
	// The clarification design is single-shot: it does not verify the
	// question was answered.
	h.Lock()
	h.Phase = domain.PhaseCollectingEvidence
	h.Unlock()

	history := s.history(ctx, sessionID)

	extraction, err := s.extractor.ExtractSymptoms(ctx, history, text)
	if err != nil {
		if errors.Is(err, llm.ErrMalformedExtraction) {
			s.logger.Warn("extraction parse failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
			s.record(ctx, sessionID, text, rephraseMessage)
			return &domain.TurnResult{Type: domain.TurnClarification, Message: rephraseMessage}, nil
		}
		return nil, err
	}

	if extraction.ClarificationNeeded {
		return s.askClarification(ctx, h, sessionID, text, history, extraction.AmbiguousTerms)
	}

	inferCtx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
	defer cancel()

	result, err := s.diagnosis.DiagnoseFromSymptoms(inferCtx, sessionID, extraction.Symptoms)
	if err != nil {
		return nil, err
	}

	message := s.curator.Compose(ctx, result.Diagnoses)
	s.record(ctx, sessionID, text, message)

	return &domain.TurnResult{
		Type:      domain.TurnDiagnosis,
		Message:   message,
		Symptoms:  extraction.Symptoms,
		Diagnoses: result.Diagnoses,
		Bounded:   result.Bounded,
	}, nil
}

// askClarification emits a follow-up question without touching the fact
// store.
func (s *DialogueService) askClarification(ctx context.Context, h *session.Handle, sessionID, text string, history []domain.Message, terms []string) (*domain.TurnResult, error) {
	question, err := s.extractor.ClarificationQuestion(ctx, history, terms)
	if err != nil {
		s.logger.Warn("clarification generation failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		question = rephraseMessage
	}

	h.Lock()
	h.Phase = domain.PhaseAwaitingClarification
	h.Unlock()

	s.record(ctx, sessionID, text, question)
	return &domain.TurnResult{Type: domain.TurnClarification, Message: question}, nil
}

func (s *DialogueService) history(ctx context.Context, sessionID string) []domain.Message {
	if s.transcripts == nil {
		return nil
	}
	entries, err := s.transcripts.History(ctx, sessionID, defaultHistorySize)
	if err != nil {
		s.logger.Warn("transcript history unavailable",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil
	}
	out := make([]domain.Message, len(entries))
	for i, e := range entries {
		out[i] = domain.Message{Role: e.Role, Content: e.Content}
	}
	return out
}

func (s *DialogueService) record(ctx context.Context, sessionID, userText, reply string) {
	if s.transcripts == nil {
		return
	}
	if err := s.transcripts.Append(ctx, sessionID, "user", userText); err != nil {
		s.logger.Warn("transcript append failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if err := s.transcripts.Append(ctx, sessionID, "assistant", reply); err != nil {
		s.logger.Warn("transcript append failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}
