package store

import (
	"context"
	"time"

	"github.com/clinai/neurodiag/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TranscriptStore persists conversation history in Postgres. Unlike the
// in-memory fact stores, transcripts survive turns and process restarts.
type TranscriptStore struct {
	db *pgxpool.Pool
}

func NewTranscriptStore(db *pgxpool.Pool) *TranscriptStore {
	return &TranscriptStore{db: db}
}

func (s *TranscriptStore) Append(ctx context.Context, sessionID, role, content string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO transcript_messages (session_id, role, content)
		 VALUES ($1, $2, $3)`,
		sessionID, role, content,
	)
	return err
}

// History returns the most recent messages for a session in chronological
// order, capped at limit.
func (s *TranscriptStore) History(ctx context.Context, sessionID string, limit int) ([]domain.TranscriptEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM (
		     SELECT id, session_id, role, content, created_at
		     FROM transcript_messages
		     WHERE session_id = $1
		     ORDER BY id DESC
		     LIMIT $2
		 ) recent
		 ORDER BY id ASC`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TranscriptEntry
	for rows.Next() {
		var e domain.TranscriptEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Content, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteOlderThan removes transcript messages created before the cutoff.
func (s *TranscriptStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM transcript_messages WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
