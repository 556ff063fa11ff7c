package store

import (
	"context"
	"time"
)

// CoupleWellbeing is the rolling relationship score maintained per couple.
type CoupleWellbeing struct {
	CoupleID  string
	Score     float64
	UpdatedAt time.Time
}

// GetCoupleWellbeing returns the current score, or ErrNotFound before the
// first analyzed session.
func (s *Store) GetCoupleWellbeing(ctx context.Context, coupleID string) (*CoupleWellbeing, error) {
	var w CoupleWellbeing
	err := s.pool.QueryRow(ctx, `
		SELECT couple_id, score, updated_at
		FROM couple_wellbeing
		WHERE couple_id = $1`,
		coupleID,
	).Scan(&w.CoupleID, &w.Score, &w.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// UpsertCoupleWellbeing writes the new score for a couple.
func (s *Store) UpsertCoupleWellbeing(ctx context.Context, coupleID string, score float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO couple_wellbeing (couple_id, score, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (couple_id) DO UPDATE SET score = $2, updated_at = now()`,
		coupleID, score,
	)
	return translate(err)
}
