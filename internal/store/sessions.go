package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionExchange is one persisted round of a finalized session.
type SessionExchange struct {
	Round         int
	QuestionIndex int
	Utterance     string
	Feedback      string
	Probes        int
}

// SavedSession is a finalized, immutable session transcript.
type SavedSession struct {
	ID             uuid.UUID
	UserID         string
	SessionToken   uuid.UUID
	Transcript     string
	ClosingSummary string
	RoundCount     int
	CreatedAt      time.Time
}

// WriteSessionTranscript persists a finalized session and its exchanges in
// one transaction and returns the session row id.
func (s *Store) WriteSessionTranscript(ctx context.Context, saved SavedSession, exchanges []SessionExchange) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	sessionID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO saved_sessions (id, user_id, session_token, transcript, closing_summary, round_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		sessionID, saved.UserID, saved.SessionToken, saved.Transcript, saved.ClosingSummary, saved.RoundCount,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert session: %w", err)
	}

	for _, ex := range exchanges {
		_, err = tx.Exec(ctx, `
			INSERT INTO session_exchanges (id, session_id, round, question_index, utterance, feedback, probes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), sessionID, ex.Round, ex.QuestionIndex, ex.Utterance, ex.Feedback, ex.Probes,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert exchange: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return sessionID, nil
}
