package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kizuna-labs/kizuna/internal/events"
	"github.com/kizuna-labs/kizuna/internal/extractor"
	"github.com/kizuna-labs/kizuna/internal/retrieval"
	"github.com/kizuna-labs/kizuna/internal/sentiment"
	"github.com/kizuna-labs/kizuna/internal/store"
	"github.com/kizuna-labs/kizuna/internal/wellbeing"
)

// factSetWindow bounds how many stored fact sets feed the per-save retrieval
// index.
const factSetWindow = 20

const summarizeSystemPrompt = `You condense couples'-coaching reflection material into short, faithful summaries.`

// SaveResult is everything the save pipeline derived from one session.
type SaveResult struct {
	SessionID       uuid.UUID                    `json:"session_id"`
	ClosingSummary  string                       `json:"closing_summary"`
	Facts           map[string]map[string]string `json:"facts"`
	Alert           *sentiment.Alert             `json:"alert,omitempty"`
	Wellbeing       *float64                     `json:"wellbeing,omitempty"`
	VectorSummaries map[string]string            `json:"vector_summaries"`
}

// SaveSession finalizes the dialogue and runs the derived-analytics
// pipeline: persist the transcript, extract structured facts, classify
// sentiment into an alert for the partner, and refresh the per-query vector
// summaries. Extraction and classification degrade to empty values on
// failure; persistence failures abort.
func (s *Service) SaveSession(ctx context.Context, token uuid.UUID) (*SaveResult, error) {
	snap, err := s.engine.Finalize(ctx, token)
	if err != nil {
		return nil, err
	}

	exchanges := make([]store.SessionExchange, len(snap.Exchanges))
	for i, ex := range snap.Exchanges {
		exchanges[i] = store.SessionExchange{
			Round:         ex.Round,
			QuestionIndex: ex.QuestionIndex,
			Utterance:     ex.Utterance,
			Feedback:      ex.Feedback,
			Probes:        ex.Probes,
		}
	}

	sessionID, err := s.store.WriteSessionTranscript(ctx, store.SavedSession{
		UserID:         snap.UserID,
		SessionToken:   snap.Token,
		Transcript:     snap.Transcript,
		ClosingSummary: snap.ClosingSummary,
		RoundCount:     snap.RoundCount,
	}, exchanges)
	if err != nil {
		return nil, fmt.Errorf("persist transcript: %w", err)
	}

	result := &SaveResult{
		SessionID:       sessionID,
		ClosingSummary:  snap.ClosingSummary,
		Facts:           map[string]map[string]string{},
		VectorSummaries: map[string]string{},
	}

	// Structured extraction, both profiles. Empty mappings are logged by the
	// extractor and simply not persisted.
	for _, profile := range []extractor.Profile{extractor.ProfileReflection, extractor.ProfileReminder} {
		fields := s.extractor.Extract(ctx, profile, snap.Transcript)
		result.Facts[profile.Name] = fields
		if len(fields) == 0 {
			continue
		}
		if _, err := s.store.WriteFactSet(ctx, snap.UserID, sessionID, profile.Name, fields); err != nil {
			return nil, fmt.Errorf("persist fact set: %w", err)
		}
	}

	// Sentiment alert for the partner. Alerts describe what was said about
	// the partner and are delivered to that partner, so no partner means no
	// alert.
	if snap.PartnerID != "" {
		partnerName := ""
		coupleID := ""
		if partner, err := s.store.GetParticipant(ctx, snap.PartnerID); err == nil {
			partnerName = partner.Name
			coupleID = partner.CoupleID
		} else {
			s.logger.Warn("partner lookup failed, alerting without a name", "partner", snap.PartnerID, "error", err)
		}
		alert := s.analyzer.Analyze(ctx, snap.Transcript, partnerName)
		result.Alert = &alert

		if _, err := s.store.WriteEmotionAlert(ctx, store.EmotionAlertRecord{
			UserID:              snap.PartnerID,
			SessionID:           sessionID,
			AverageScore:        alert.AverageScore,
			MaxMagnitude:        alert.MaxMagnitude,
			Label:               alert.Label,
			Glyph:               alert.Glyph,
			Message:             alert.Message,
			MostNegativeMention: alert.MostNegativeMention,
		}); err != nil {
			return nil, fmt.Errorf("persist emotion alert: %w", err)
		}

		if err := s.events.Publish(events.SubjectAlertCreated, map[string]any{
			"user_id":    snap.PartnerID,
			"session_id": sessionID.String(),
			"label":      alert.Label,
		}); err != nil {
			s.logger.Warn("failed to publish alert event", "error", err)
		}

		if s.notifier != nil {
			if _, err := s.notifier.PostAlert(ctx, partnerName, alert); err != nil {
				s.logger.Warn("failed to post alert notification", "error", err)
			}
		}

		if coupleID != "" {
			if score, err := s.updateWellbeing(ctx, coupleID, alert.Label); err != nil {
				s.logger.Warn("failed to update couple wellbeing", "couple", coupleID, "error", err)
			} else {
				result.Wellbeing = &score
			}
		}
	}

	result.VectorSummaries = s.refreshVectorSummaries(ctx, snap.UserID)

	if err := s.events.Publish(events.SubjectSessionSaved, map[string]any{
		"user_id":    snap.UserID,
		"session_id": sessionID.String(),
		"rounds":     snap.RoundCount,
	}); err != nil {
		s.logger.Warn("failed to publish session event", "error", err)
	}

	s.engine.Remove(token)
	s.logger.Info("session saved",
		"user", snap.UserID,
		"session", sessionID,
		"rounds", snap.RoundCount,
		"alerted_partner", snap.PartnerID != "",
	)
	return result, nil
}

// wellbeingDecayRate is the per-day fraction of the distance back to
// baseline a stale score recovers.
const wellbeingDecayRate = 0.05

// updateWellbeing folds this session's alert into the couple's rolling
// score, first decaying the stored score for the days since the last one.
func (s *Service) updateWellbeing(ctx context.Context, coupleID, label string) (float64, error) {
	score := wellbeing.Baseline
	current, err := s.store.GetCoupleWellbeing(ctx, coupleID)
	switch {
	case err == nil:
		days := int(time.Since(current.UpdatedAt).Hours() / 24)
		score = wellbeing.DecayScore(current.Score, wellbeingDecayRate, days)
	case errors.Is(err, store.ErrNotFound):
		// first analyzed session for this couple
	default:
		return 0, err
	}

	score = wellbeing.ApplyAlert(score, label)
	if err := s.store.UpsertCoupleWellbeing(ctx, coupleID, score); err != nil {
		return 0, err
	}
	return score, nil
}

// refreshVectorSummaries rebuilds the ephemeral fact index and appends one
// summarized result per predefined query. Every step here is best-effort:
// a failure leaves that query's summary out and is logged.
func (s *Service) refreshVectorSummaries(ctx context.Context, userID string) map[string]string {
	summaries := map[string]string{}

	sets, err := s.store.ListFactSets(ctx, userID, extractor.ProfileReflection.Name, factSetWindow)
	if err != nil {
		s.logger.Warn("failed to load fact sets for retrieval", "user", userID, "error", err)
		return summaries
	}

	var documents []string
	for _, fs := range sets {
		if doc := fs.Document(); doc != "" {
			documents = append(documents, doc)
		}
	}
	if len(documents) == 0 {
		return summaries
	}

	ix, err := retrieval.Build(ctx, s.embedder, documents)
	if err != nil {
		s.logger.Warn("failed to build fact index", "user", userID, "error", err)
		return summaries
	}

	hits := retrieval.SearchPredefined(ctx, ix, retrieval.DefaultTopK, s.logger)
	for queryKey, docs := range hits {
		if len(docs) == 0 {
			continue
		}
		summary, err := s.summarizeDocs(ctx, docs)
		if err != nil {
			s.logger.Warn("failed to summarize query hits", "query_key", queryKey, "error", err)
			continue
		}
		if _, err := s.store.WriteVectorSummary(ctx, userID, queryKey, summary); err != nil {
			s.logger.Warn("failed to persist vector summary", "query_key", queryKey, "error", err)
			continue
		}
		summaries[queryKey] = summary
	}
	return summaries
}

func (s *Service) summarizeDocs(ctx context.Context, docs []string) (string, error) {
	prompt := fmt.Sprintf("Summarize the following texts together:\n%s", strings.Join(docs, "\n\n"))
	summary, err := s.llm.Complete(ctx, summarizeSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return strings.TrimSpace(summary), nil
}
