package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DialogueAdviceRecord is a cross-partner advisory, keyed by couple id and
// the participant who requested it.
type DialogueAdviceRecord struct {
	ID        uuid.UUID
	CoupleID  string
	UserID    string
	Advice    string
	CreatedAt time.Time
}

// WriteDialogueAdvice appends an advisory.
func (s *Store) WriteDialogueAdvice(ctx context.Context, coupleID, userID, advice string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO dialogue_advice (id, couple_id, user_id, advice, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		id, coupleID, userID, advice,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert dialogue advice: %w", err)
	}
	return id, nil
}

// ListDialogueAdvice returns a couple's advisories, newest first.
func (s *Store) ListDialogueAdvice(ctx context.Context, coupleID string, limit int) ([]DialogueAdviceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, couple_id, user_id, advice, created_at
		FROM dialogue_advice
		WHERE couple_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		coupleID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query dialogue advice: %w", err)
	}
	defer rows.Close()

	var records []DialogueAdviceRecord
	for rows.Next() {
		var r DialogueAdviceRecord
		if err := rows.Scan(&r.ID, &r.CoupleID, &r.UserID, &r.Advice, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dialogue advice: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}
