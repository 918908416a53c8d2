package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinai/neurodiag/internal/domain"
	"github.com/clinai/neurodiag/internal/service"
	"github.com/go-chi/chi/v5"
)

// SessionHandler exposes the engine surface directly: symptom assertion,
// forward/backward diagnosis, explanations and reset.
type SessionHandler struct {
	svc *service.DiagnosisService
}

func NewSessionHandler(svc *service.DiagnosisService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type symptomPayload struct {
	Name       string  `json:"name"`
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
}

type addFactsRequest struct {
	Symptoms []symptomPayload `json:"symptoms,omitempty"`
	Factors  []symptomPayload `json:"risk_factors,omitempty"`
}

type diagnosisResponse struct {
	Diagnoses []domain.Diagnosis `json:"diagnoses"`
	Bounded   bool               `json:"bounded_computation,omitempty"`
}

func (h *SessionHandler) AddSymptoms(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req addFactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	symptoms, err := toSymptoms(req.Symptoms)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.AddSymptoms(sessionID, symptoms); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) AddRiskFactors(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req addFactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	factors, err := toSymptoms(req.Factors)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.AddRiskFactors(sessionID, factors); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Diagnose runs inference over the session's current facts. The mode query
// parameter selects the chaining direction; backward mode also needs a target
// query parameter. Defaults to forward.
func (h *SessionHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = service.ModeForward
	}

	diagnoses, bounded, err := h.svc.RunDiagnosis(r.Context(), sessionID, mode, r.URL.Query().Get("target"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diagnosisResponse{Diagnoses: diagnoses, Bounded: bounded})
}

// DiagnoseTarget backward-chains one target disease.
func (h *SessionHandler) DiagnoseTarget(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	disease := chi.URLParam(r, "disease")

	diagnoses, bounded, err := h.svc.RunBackwardDiagnosis(r.Context(), sessionID, disease)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diagnosisResponse{Diagnoses: diagnoses, Bounded: bounded})
}

func (h *SessionHandler) Explain(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	disease := chi.URLParam(r, "disease")

	explanation, err := h.svc.ExplainDiagnosis(r.Context(), sessionID, disease)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}

// Reset clears the session's turn-scoped facts. Idempotent. With ?purge=true
// the session is evicted entirely, risk factors and dialogue phase included.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if r.URL.Query().Get("purge") == "true" {
		h.svc.EvictSession(sessionID)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.svc.ResetPatientState(sessionID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSymptoms(payloads []symptomPayload) ([]domain.Symptom, error) {
	out := make([]domain.Symptom, 0, len(payloads))
	for _, p := range payloads {
		name, err := domain.NewSymbol(p.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Symptom{Name: name, Strength: p.Strength, Confidence: p.Confidence})
	}
	return out, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier),
		errors.Is(err, service.ErrInvalidSymptom),
		errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
