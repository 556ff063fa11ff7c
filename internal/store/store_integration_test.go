//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_ParticipantConflict(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := Participant{
		ID:          "it-" + uuid.New().String()[:8],
		Name:        "Aoi",
		Gender:      "female",
		Birthday:    time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC),
		Personality: "INFP",
		CoupleID:    "couple-" + uuid.New().String()[:8],
	}

	if err := s.CreateParticipant(ctx, p); err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}

	// Second registration with the same id must conflict and leave the first
	// record unchanged.
	dup := p
	dup.Name = "Impostor"
	if err := s.CreateParticipant(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, err := s.GetParticipant(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if got.Name != "Aoi" {
		t.Errorf("original record was mutated: %+v", got)
	}
}

func TestIntegration_PartnerLookup(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	coupleID := "couple-" + uuid.New().String()[:8]
	a := Participant{ID: "it-" + uuid.New().String()[:8], Name: "Aoi", Gender: "female", Birthday: time.Now(), Personality: "INFP", CoupleID: coupleID}
	b := Participant{ID: "it-" + uuid.New().String()[:8], Name: "Ken", Gender: "male", Birthday: time.Now(), Personality: "ESTJ", CoupleID: coupleID}

	if err := s.CreateParticipant(ctx, a); err != nil {
		t.Fatalf("create a: %v", err)
	}

	// Before the partner registers, lookup is ErrNotFound.
	if _, err := s.GetPartner(ctx, coupleID, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before partner registration, got %v", err)
	}

	if err := s.CreateParticipant(ctx, b); err != nil {
		t.Fatalf("create b: %v", err)
	}

	partner, err := s.GetPartner(ctx, coupleID, a.ID)
	if err != nil {
		t.Fatalf("GetPartner failed: %v", err)
	}
	if partner.ID != b.ID {
		t.Errorf("expected partner %s, got %s", b.ID, partner.ID)
	}
}

func TestIntegration_EmotionAlertLatest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	userID := "it-" + uuid.New().String()[:8]
	sessionID := uuid.New()

	first := EmotionAlertRecord{UserID: userID, SessionID: sessionID, AverageScore: -0.3, MaxMagnitude: 1.0, Label: "Mild friction", Glyph: "😐", Message: "first"}
	second := EmotionAlertRecord{UserID: userID, SessionID: sessionID, AverageScore: -0.7, MaxMagnitude: 2.5, Label: "Severe", Glyph: "😡", Message: "second"}

	if _, err := s.WriteEmotionAlert(ctx, first); err != nil {
		t.Fatalf("write first alert: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := s.WriteEmotionAlert(ctx, second); err != nil {
		t.Fatalf("write second alert: %v", err)
	}

	latest, err := s.LatestEmotionAlert(ctx, userID)
	if err != nil {
		t.Fatalf("LatestEmotionAlert failed: %v", err)
	}
	if latest.Message != "second" {
		t.Errorf("expected latest alert, got %+v", latest)
	}
}

func TestIntegration_FactSetRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	userID := "it-" + uuid.New().String()[:8]
	sessionID := uuid.New()
	fields := map[string]string{"future_plans": "walk together", "want_to_discuss": "holidays"}

	if _, err := s.WriteFactSet(ctx, userID, sessionID, "reflection", fields); err != nil {
		t.Fatalf("WriteFactSet failed: %v", err)
	}

	sets, err := s.ListFactSets(ctx, userID, "reflection", 10)
	if err != nil {
		t.Fatalf("ListFactSets failed: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected 1 fact set, got %d", len(sets))
	}
	if sets[0].Fields["future_plans"] != "walk together" {
		t.Errorf("fields did not round-trip: %+v", sets[0].Fields)
	}
	if sets[0].Document() == "" {
		t.Error("expected a non-empty document blob")
	}
}
