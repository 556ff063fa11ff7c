package service

import (
	"context"
	"fmt"

	"github.com/kizuna-labs/kizuna/internal/events"
	"github.com/kizuna-labs/kizuna/internal/report"
	"github.com/kizuna-labs/kizuna/internal/store"
)

// answerWindow bounds how many stored answer summaries feed the historical
// report, and advicePairWindow how many vector-summary blocks per partner
// feed dialogue advice.
const (
	answerWindow     = 50
	advicePairWindow = 3
)

// SubmitSummarizedAnswer summarizes a free-form answer and stores both raw
// text and summary; the summaries accumulate for the historical report.
func (s *Service) SubmitSummarizedAnswer(ctx context.Context, userID, text string) (string, error) {
	if _, err := s.store.GetParticipant(ctx, userID); err != nil {
		return "", err
	}

	summary, err := s.llm.Complete(ctx, summarizeSystemPrompt, fmt.Sprintf("Summarize the following answer: %s", text))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if _, err := s.store.WriteAnswer(ctx, userID, text, summary); err != nil {
		return "", fmt.Errorf("persist answer: %w", err)
	}
	return summary, nil
}

// HistoricalReport generates the three-section partner report from the
// participant's accumulated answer summaries.
func (s *Service) HistoricalReport(ctx context.Context, userID string) (report.Report, error) {
	summaries, err := s.store.ListAnswerSummaries(ctx, userID, answerWindow)
	if err != nil {
		return report.Report{}, fmt.Errorf("load answer summaries: %w", err)
	}
	if len(summaries) == 0 {
		return report.Report{}, store.ErrNotFound
	}

	rep, err := s.synthesizer.HistoricalReport(ctx, summaries)
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return rep, nil
}

// LatestEmotionAlert returns the newest alert addressed to the participant.
func (s *Service) LatestEmotionAlert(ctx context.Context, userID string) (*store.EmotionAlertRecord, error) {
	return s.store.LatestEmotionAlert(ctx, userID)
}

// DialogueAdvice synthesizes, persists and returns cross-partner advice for
// the requesting participant's couple. Both partners must be registered.
func (s *Service) DialogueAdvice(ctx context.Context, userID string) (string, error) {
	user, err := s.store.GetParticipant(ctx, userID)
	if err != nil {
		return "", err
	}
	partner, err := s.store.GetPartner(ctx, user.CoupleID, user.ID)
	if err != nil {
		return "", err
	}

	userSummaries, err := s.store.LatestVectorSummaries(ctx, user.ID, advicePairWindow)
	if err != nil {
		return "", fmt.Errorf("load user summaries: %w", err)
	}
	partnerSummaries, err := s.store.LatestVectorSummaries(ctx, partner.ID, advicePairWindow)
	if err != nil {
		return "", fmt.Errorf("load partner summaries: %w", err)
	}

	advice, err := s.synthesizer.DialogueAdvice(ctx, report.AdviceInput{
		UserName:           user.Name,
		UserPersonality:    user.Personality,
		UserSummaries:      summaryTexts(userSummaries),
		PartnerName:        partner.Name,
		PartnerPersonality: partner.Personality,
		PartnerSummaries:   summaryTexts(partnerSummaries),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if _, err := s.store.WriteDialogueAdvice(ctx, user.CoupleID, user.ID, advice); err != nil {
		return "", fmt.Errorf("persist advice: %w", err)
	}

	if err := s.events.Publish(events.SubjectAdviceCreated, map[string]any{
		"couple_id": user.CoupleID,
		"user_id":   user.ID,
	}); err != nil {
		s.logger.Warn("failed to publish advice event", "error", err)
	}
	return advice, nil
}

// LatestDialogueAdvice returns the newest stored advisory for the
// participant's couple without regenerating it. store.ErrNotFound means no
// advice has been synthesized yet.
func (s *Service) LatestDialogueAdvice(ctx context.Context, userID string) (string, error) {
	user, err := s.store.GetParticipant(ctx, userID)
	if err != nil {
		return "", err
	}
	records, err := s.store.ListDialogueAdvice(ctx, user.CoupleID, 1)
	if err != nil {
		return "", fmt.Errorf("load dialogue advice: %w", err)
	}
	if len(records) == 0 {
		return "", store.ErrNotFound
	}
	return records[0].Advice, nil
}

// SubmitReflectionNote stores a participant's short self-note.
func (s *Service) SubmitReflectionNote(ctx context.Context, userID, futurePlans, wantToDiscuss string) error {
	if _, err := s.store.GetParticipant(ctx, userID); err != nil {
		return err
	}
	if _, err := s.store.WriteReflectionNote(ctx, userID, futurePlans, wantToDiscuss); err != nil {
		return fmt.Errorf("persist reflection note: %w", err)
	}
	return nil
}

// ReflectionNotes fetches the participant's own notes, or their partner's
// when forPartner is set.
func (s *Service) ReflectionNotes(ctx context.Context, userID string, forPartner bool, limit int) ([]store.ReflectionNote, error) {
	user, err := s.store.GetParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	target := user.ID
	if forPartner {
		partner, err := s.store.GetPartner(ctx, user.CoupleID, user.ID)
		if err != nil {
			return nil, err
		}
		target = partner.ID
	}
	return s.store.ListReflectionNotes(ctx, target, limit)
}

// SemanticReport regenerates the predefined-query summaries from the
// participant's accumulated structured facts, on demand rather than at save
// time. store.ErrNotFound means no facts have been extracted yet.
func (s *Service) SemanticReport(ctx context.Context, userID string) (map[string]string, error) {
	if _, err := s.store.GetParticipant(ctx, userID); err != nil {
		return nil, err
	}
	summaries := s.refreshVectorSummaries(ctx, userID)
	if len(summaries) == 0 {
		return nil, store.ErrNotFound
	}
	return summaries, nil
}

// CoupleWellbeing returns the rolling relationship score for the
// participant's couple, or store.ErrNotFound before any session was
// analyzed.
func (s *Service) CoupleWellbeing(ctx context.Context, userID string) (*store.CoupleWellbeing, error) {
	user, err := s.store.GetParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.GetCoupleWellbeing(ctx, user.CoupleID)
}

func summaryTexts(records []store.VectorSummaryRecord) []string {
	texts := make([]string, 0, len(records))
	for _, r := range records {
		texts = append(texts, r.Summary)
	}
	return texts
}
