package domain

import (
	"context"
	"time"
)

// Message is one entry of a session transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TranscriptEntry is a persisted transcript message. Transcripts outlive
// turns and process restarts, unlike the per-turn fact store.
type TranscriptEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptStore persists conversation history per session.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID, role, content string) error
	History(ctx context.Context, sessionID string, limit int) ([]TranscriptEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Extractor is the generative-language collaborator that turns free text
// into structured evidence. Implementations are blocking network clients and
// must never be called while holding a session lock.
type Extractor interface {
	ExtractSymptoms(ctx context.Context, history []Message, input string) (*ExtractionResult, error)
	ClarificationQuestion(ctx context.Context, history []Message, ambiguousTerms []string) (string, error)
}

// Narrator turns a ranked diagnosis list into user-facing prose. Optional;
// the curator falls back to a deterministic template without one.
type Narrator interface {
	NarrateDiagnoses(ctx context.Context, diagnoses []Diagnosis) (string, error)
}
