package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReflectionNote is a short self-submitted note: what the participant plans
// to do next and what they still want to talk through.
type ReflectionNote struct {
	ID            uuid.UUID `json:"id"`
	UserID        string    `json:"user_id"`
	FuturePlans   string    `json:"future_plans"`
	WantToDiscuss string    `json:"want_to_discuss"`
	CreatedAt     time.Time `json:"created_at"`
}

// WriteReflectionNote appends a note.
func (s *Store) WriteReflectionNote(ctx context.Context, userID, futurePlans, wantToDiscuss string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reflection_notes (id, user_id, future_plans, want_to_discuss, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		id, userID, futurePlans, wantToDiscuss,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert reflection note: %w", err)
	}
	return id, nil
}

// ListReflectionNotes returns a participant's notes, newest first.
func (s *Store) ListReflectionNotes(ctx context.Context, userID string, limit int) ([]ReflectionNote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, future_plans, want_to_discuss, created_at
		FROM reflection_notes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query reflection notes: %w", err)
	}
	defer rows.Close()

	var notes []ReflectionNote
	for rows.Next() {
		var n ReflectionNote
		if err := rows.Scan(&n.ID, &n.UserID, &n.FuturePlans, &n.WantToDiscuss, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reflection note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return notes, nil
}
