package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FactSet is one structured extraction over a finalized transcript: a schema
// profile name plus the extracted field→text mapping.
type FactSet struct {
	ID        uuid.UUID
	UserID    string
	SessionID uuid.UUID
	Profile   string
	Fields    map[string]string
	CreatedAt time.Time
}

// WriteFactSet persists one extraction result. Owned by (participant,
// transcript); created once per save.
func (s *Store) WriteFactSet(ctx context.Context, userID string, sessionID uuid.UUID, profile string, fields map[string]string) (uuid.UUID, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal fields: %w", err)
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO structured_facts (id, user_id, session_id, profile, fields, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		id, userID, sessionID, profile, payload,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert fact set: %w", err)
	}
	return id, nil
}

// ListFactSets returns a participant's fact sets for one profile, newest
// first.
func (s *Store) ListFactSets(ctx context.Context, userID, profile string, limit int) ([]FactSet, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, session_id, profile, fields, created_at
		FROM structured_facts
		WHERE user_id = $1 AND profile = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		userID, profile, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query fact sets: %w", err)
	}
	defer rows.Close()

	var sets []FactSet
	for rows.Next() {
		var (
			fs      FactSet
			payload []byte
		)
		if err := rows.Scan(&fs.ID, &fs.UserID, &fs.SessionID, &fs.Profile, &payload, &fs.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fact set: %w", err)
		}
		if err := json.Unmarshal(payload, &fs.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
		sets = append(sets, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return sets, nil
}

// Document serializes the fact set as a flat text blob for the retrieval
// index.
func (fs FactSet) Document() string {
	payload, err := json.Marshal(fs.Fields)
	if err != nil {
		return ""
	}
	return string(payload)
}
