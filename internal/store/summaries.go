package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VectorSummaryRecord is the summarized result of one predefined semantic
// query, appended per (participant, query key).
type VectorSummaryRecord struct {
	ID        uuid.UUID
	UserID    string
	QueryKey  string
	Summary   string
	CreatedAt time.Time
}

// WriteVectorSummary appends a per-query summary.
func (s *Store) WriteVectorSummary(ctx context.Context, userID, queryKey, summary string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO vector_summaries (id, user_id, query_key, summary, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		id, userID, queryKey, summary,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert vector summary: %w", err)
	}
	return id, nil
}

// LatestVectorSummaries returns a participant's newest summaries across all
// query keys, newest first.
func (s *Store) LatestVectorSummaries(ctx context.Context, userID string, limit int) ([]VectorSummaryRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, query_key, summary, created_at
		FROM vector_summaries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query vector summaries: %w", err)
	}
	defer rows.Close()

	var records []VectorSummaryRecord
	for rows.Next() {
		var r VectorSummaryRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.QueryKey, &r.Summary, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vector summary: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}
