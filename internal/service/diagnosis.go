package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinai/neurodiag/internal/domain"
	"github.com/clinai/neurodiag/internal/engine"
	"github.com/clinai/neurodiag/internal/session"
	"go.uber.org/zap"
)

var (
	ErrInvalidSymptom  = errors.New("symptom strength and confidence must be within [0,1]")
	ErrInvalidArgument = errors.New("unknown diagnosis mode")
)

// Diagnosis modes accepted by RunDiagnosis.
const (
	ModeForward  = "forward"
	ModeBackward = "backward"
)

// DiagnosisService is the engine surface consumed by the orchestration
// layer. All fact-store access is serialized through the session handle, so
// concurrent requests for the same session cannot observe a half-reset
// store.
type DiagnosisService struct {
	registry *session.Registry
	forward  *engine.ForwardChainer
	backward *engine.BackwardChainer
	logger   *zap.Logger
}

func NewDiagnosisService(registry *session.Registry, rules *domain.RuleBase, logger *zap.Logger) *DiagnosisService {
	return &DiagnosisService{
		registry: registry,
		forward:  engine.NewForwardChainer(rules, logger),
		backward: engine.NewBackwardChainer(rules, logger),
		logger:   logger,
	}
}

// SetMaxIterations overrides the forward-chaining fixpoint bound.
func (s *DiagnosisService) SetMaxIterations(n int) {
	s.forward.SetMaxIterations(n)
}

// ResetPatientState clears the session's turn-scoped facts. Idempotent.
func (s *DiagnosisService) ResetPatientState(sessionID string) error {
	h, err := s.registry.Acquire(sessionID)
	if err != nil {
		return err
	}
	h.Lock()
	defer h.Unlock()
	h.Store.ResetPatient(h.Patient)
	return nil
}

// AddSymptoms asserts hasSymptom facts for the session. Fails without
// mutating the store if any symptom carries a truth value outside [0,1].
func (s *DiagnosisService) AddSymptoms(sessionID string, symptoms []domain.Symptom) error {
	return s.addFacts(sessionID, domain.PredicateHasSymptom, symptoms)
}

// AddRiskFactors asserts riskFactor facts for the session. Risk factors
// survive resetPatientState and feed the post-fixpoint adjustment pass.
func (s *DiagnosisService) AddRiskFactors(sessionID string, factors []domain.Symptom) error {
	return s.addFacts(sessionID, domain.PredicateRiskFactor, factors)
}

func (s *DiagnosisService) addFacts(sessionID string, pred domain.Predicate, items []domain.Symptom) error {
	for _, item := range items {
		if !item.TV().Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidSymptom, item.Name)
		}
	}

	h, err := s.registry.Acquire(sessionID)
	if err != nil {
		return err
	}
	h.Lock()
	defer h.Unlock()
	for _, item := range items {
		h.Store.Assert(domain.Fact{
			Predicate: pred,
			Subject:   h.Patient,
			Object:    item.Name,
			TV:        item.TV(),
		})
	}
	return nil
}

// RunForwardDiagnosis runs the rule base to fixpoint and returns every
// derived disease for the session, ranked. A bound or deadline hit yields a
// partial list with Bounded set, not an error.
func (s *DiagnosisService) RunForwardDiagnosis(ctx context.Context, sessionID string) (engine.ForwardResult, error) {
	h, err := s.registry.Acquire(sessionID)
	if err != nil {
		return engine.ForwardResult{}, err
	}
	h.Lock()
	defer h.Unlock()
	return s.forward.Run(ctx, h.Store, h.Patient), nil
}

// DiagnoseFromSymptoms is the single-turn path: reset, assert the fresh
// symptoms and forward-chain under one lock acquisition, so no concurrent
// observer can see the store between reset and result.
func (s *DiagnosisService) DiagnoseFromSymptoms(ctx context.Context, sessionID string, symptoms []domain.Symptom) (engine.ForwardResult, error) {
	for _, sym := range symptoms {
		if !sym.TV().Valid() {
			return engine.ForwardResult{}, fmt.Errorf("%w: %s", ErrInvalidSymptom, sym.Name)
		}
	}

	h, err := s.registry.Acquire(sessionID)
	if err != nil {
		return engine.ForwardResult{}, err
	}
	h.Lock()
	defer h.Unlock()

	h.Store.ResetPatient(h.Patient)
	for _, sym := range symptoms {
		h.Store.Assert(domain.Fact{
			Predicate: domain.PredicateHasSymptom,
			Subject:   h.Patient,
			Object:    sym.Name,
			TV:        sym.TV(),
		})
	}
	result := s.forward.Run(ctx, h.Store, h.Patient)

	s.logger.Info("forward diagnosis complete",
		zap.String("session_id", sessionID),
		zap.Int("symptoms", len(symptoms)),
		zap.Int("diagnoses", len(result.Diagnoses)),
		zap.Int("iterations", result.Iterations),
		zap.Bool("bounded", result.Bounded))
	return result, nil
}

// RunBackwardDiagnosis proves one target disease, returning one diagnosis
// entry per independent derivation. An unsupported target yields an empty
// list, never an error.
func (s *DiagnosisService) RunBackwardDiagnosis(ctx context.Context, sessionID, disease string) ([]domain.Diagnosis, bool, error) {
	target, err := domain.NewSymbol(disease)
	if err != nil {
		return nil, false, err
	}
	h, err := s.registry.Acquire(sessionID)
	if err != nil {
		return nil, false, err
	}
	h.Lock()
	defer h.Unlock()

	result := s.backward.Prove(ctx, h.Store, h.Patient, target)
	return engine.ProofsToDiagnoses(target, result.Proofs), result.Bounded, nil
}

// ProbeDiagnoses backward-chains several candidate diseases in sequence and
// merges the results into one deduplicated, ranked list.
func (s *DiagnosisService) ProbeDiagnoses(ctx context.Context, sessionID string, diseases []string) ([]domain.Diagnosis, error) {
	var sources [][]domain.Diagnosis
	for _, disease := range diseases {
		ds, _, err := s.RunBackwardDiagnosis(ctx, sessionID, disease)
		if err != nil {
			return nil, err
		}
		sources = append(sources, ds)
	}
	return engine.MergeDiagnoses(sources...), nil
}

// RunDiagnosis dispatches on the requested mode. An unknown mode is an
// InvalidArgument error surfaced synchronously.
func (s *DiagnosisService) RunDiagnosis(ctx context.Context, sessionID, mode, target string) ([]domain.Diagnosis, bool, error) {
	switch mode {
	case ModeForward:
		result, err := s.RunForwardDiagnosis(ctx, sessionID)
		return result.Diagnoses, result.Bounded, err
	case ModeBackward:
		return s.RunBackwardDiagnosis(ctx, sessionID, target)
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidArgument, mode)
	}
}

// ExplainDiagnosis returns the derivation chains supporting a disease, or a
// not-available marker when nothing supports it.
func (s *DiagnosisService) ExplainDiagnosis(ctx context.Context, sessionID, disease string) (domain.Explanation, error) {
	target, err := domain.NewSymbol(disease)
	if err != nil {
		return domain.Explanation{}, err
	}
	h, err := s.registry.Acquire(sessionID)
	if err != nil {
		return domain.Explanation{}, err
	}
	h.Lock()
	defer h.Unlock()

	result := s.backward.Prove(ctx, h.Store, h.Patient, target)
	return engine.Explain(target, result.Proofs), nil
}

// EvictSession drops the session's fact store entirely.
func (s *DiagnosisService) EvictSession(sessionID string) {
	s.registry.Evict(sessionID)
}
