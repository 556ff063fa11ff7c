package store

import (
	"context"
	"fmt"
	"time"
)

// Participant is one member of a couple. CoupleID links exactly two
// participants; the partner is the other participant sharing the key.
type Participant struct {
	ID          string
	Name        string
	Gender      string
	Birthday    time.Time
	Personality string
	CoupleID    string
	CreatedAt   time.Time
}

// CreateParticipant registers a participant. Registering an existing id
// returns ErrConflict and leaves the original record unchanged.
func (s *Store) CreateParticipant(ctx context.Context, p Participant) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO participants (id, name, gender, birthday, personality, couple_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		p.ID, p.Name, p.Gender, p.Birthday, p.Personality, p.CoupleID,
	)
	if err != nil {
		if translated := translate(err); translated == ErrConflict {
			return ErrConflict
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// GetParticipant fetches a participant by id.
func (s *Store) GetParticipant(ctx context.Context, id string) (*Participant, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, gender, birthday, personality, couple_id, created_at
		FROM participants
		WHERE id = $1`,
		id,
	)

	var p Participant
	if err := row.Scan(&p.ID, &p.Name, &p.Gender, &p.Birthday, &p.Personality, &p.CoupleID, &p.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// GetPartner fetches the other participant sharing the couple key, or
// ErrNotFound when the participant has no partner yet.
func (s *Store) GetPartner(ctx context.Context, coupleID, excludeID string) (*Participant, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, gender, birthday, personality, couple_id, created_at
		FROM participants
		WHERE couple_id = $1 AND id != $2
		LIMIT 1`,
		coupleID, excludeID,
	)

	var p Participant
	if err := row.Scan(&p.ID, &p.Name, &p.Gender, &p.Birthday, &p.Personality, &p.CoupleID, &p.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
