package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinai/neurodiag/internal/domain"
	"github.com/clinai/neurodiag/internal/service"
)

// ChatHandler serves the conversational turn endpoint.
type ChatHandler struct {
	dialogue *service.DialogueService
}

func NewChatHandler(dialogue *service.DialogueService) *ChatHandler {
	return &ChatHandler{dialogue: dialogue}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// Turn handles one turn of the conversation: either a diagnosis or a
// clarification question.
func (h *ChatHandler) Turn(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := h.dialogue.HandleTurn(r.Context(), req.SessionID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidIdentifier):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidSymptom):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to process turn")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
