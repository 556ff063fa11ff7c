package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmotionAlertRecord is a persisted sentiment classification. UserID is the
// recipient, the partner of the speaker whose transcript produced it.
type EmotionAlertRecord struct {
	ID                  uuid.UUID
	UserID              string
	SessionID           uuid.UUID
	AverageScore        float64
	MaxMagnitude        float64
	Label               string
	Glyph               string
	Message             string
	MostNegativeMention string
	CreatedAt           time.Time
}

// WriteEmotionAlert appends an alert for the recipient.
func (s *Store) WriteEmotionAlert(ctx context.Context, a EmotionAlertRecord) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO emotion_alerts (id, user_id, session_id, average_score, max_magnitude, label, glyph, message, most_negative_mention, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		id, a.UserID, a.SessionID, a.AverageScore, a.MaxMagnitude, a.Label, a.Glyph, a.Message, a.MostNegativeMention,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert emotion alert: %w", err)
	}
	return id, nil
}

// LatestEmotionAlert returns the newest alert addressed to the participant.
func (s *Store) LatestEmotionAlert(ctx context.Context, userID string) (*EmotionAlertRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, session_id, average_score, max_magnitude, label, glyph, message, most_negative_mention, created_at
		FROM emotion_alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`,
		userID,
	)

	var a EmotionAlertRecord
	err := row.Scan(&a.ID, &a.UserID, &a.SessionID, &a.AverageScore, &a.MaxMagnitude, &a.Label, &a.Glyph, &a.Message, &a.MostNegativeMention, &a.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}
