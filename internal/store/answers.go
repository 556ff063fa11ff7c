package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is a free-form submitted answer plus its model-generated
// summary; the summaries feed the historical-answer report.
type AnswerRecord struct {
	ID        uuid.UUID
	UserID    string
	RawText   string
	Summary   string
	CreatedAt time.Time
}

// WriteAnswer stores a raw answer with its summary.
func (s *Store) WriteAnswer(ctx context.Context, userID, rawText, summary string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO answers (id, user_id, raw_text, summary, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		id, userID, rawText, summary,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert answer: %w", err)
	}
	return id, nil
}

// ListAnswerSummaries returns a participant's stored answer summaries,
// newest first.
func (s *Store) ListAnswerSummaries(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT summary
		FROM answers
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var summaries []string
	for rows.Next() {
		var summary string
		if err := rows.Scan(&summary); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return summaries, nil
}
