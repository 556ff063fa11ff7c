package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kizuna-labs/kizuna/internal/dialogue"
	"github.com/kizuna-labs/kizuna/internal/events"
	"github.com/kizuna-labs/kizuna/internal/extractor"
	"github.com/kizuna-labs/kizuna/internal/report"
	"github.com/kizuna-labs/kizuna/internal/retrieval"
	"github.com/kizuna-labs/kizuna/internal/sentiment"
	"github.com/kizuna-labs/kizuna/internal/store"
)

// ErrUpstream marks failures of the language-model or sentiment services, as
// opposed to caller mistakes or storage faults.
var ErrUpstream = errors.New("upstream service failure")

// Storage is the persistence surface the service depends on; *store.Store
// implements it.
type Storage interface {
	CreateParticipant(ctx context.Context, p store.Participant) error
	GetParticipant(ctx context.Context, id string) (*store.Participant, error)
	GetPartner(ctx context.Context, coupleID, excludeID string) (*store.Participant, error)
	WriteSessionTranscript(ctx context.Context, saved store.SavedSession, exchanges []store.SessionExchange) (uuid.UUID, error)
	WriteFactSet(ctx context.Context, userID string, sessionID uuid.UUID, profile string, fields map[string]string) (uuid.UUID, error)
	ListFactSets(ctx context.Context, userID, profile string, limit int) ([]store.FactSet, error)
	WriteEmotionAlert(ctx context.Context, a store.EmotionAlertRecord) (uuid.UUID, error)
	LatestEmotionAlert(ctx context.Context, userID string) (*store.EmotionAlertRecord, error)
	WriteVectorSummary(ctx context.Context, userID, queryKey, summary string) (uuid.UUID, error)
	LatestVectorSummaries(ctx context.Context, userID string, limit int) ([]store.VectorSummaryRecord, error)
	WriteDialogueAdvice(ctx context.Context, coupleID, userID, advice string) (uuid.UUID, error)
	ListDialogueAdvice(ctx context.Context, coupleID string, limit int) ([]store.DialogueAdviceRecord, error)
	WriteAnswer(ctx context.Context, userID, rawText, summary string) (uuid.UUID, error)
	ListAnswerSummaries(ctx context.Context, userID string, limit int) ([]string, error)
	WriteReflectionNote(ctx context.Context, userID, futurePlans, wantToDiscuss string) (uuid.UUID, error)
	ListReflectionNotes(ctx context.Context, userID string, limit int) ([]store.ReflectionNote, error)
	GetCoupleWellbeing(ctx context.Context, coupleID string) (*store.CoupleWellbeing, error)
	UpsertCoupleWellbeing(ctx context.Context, coupleID string, score float64) error
}

// Completer is the slice of the language-model gateway the service calls
// directly (answer and per-query summarization).
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Notifier pushes partner-facing alert notifications to a chat surface.
type Notifier interface {
	PostAlert(ctx context.Context, recipientName string, a sentiment.Alert) (string, error)
}

// Service orchestrates the reflection dialogue and the derived-analytics
// pipeline behind the caller-facing operations.
type Service struct {
	store       Storage
	engine      *dialogue.Engine
	extractor   *extractor.Extractor
	analyzer    *sentiment.Analyzer
	synthesizer *report.Synthesizer
	llm         Completer
	embedder    retrieval.Embedder
	events      *events.Publisher
	notifier    Notifier
	logger      *slog.Logger
}

func New(
	st Storage,
	engine *dialogue.Engine,
	ext *extractor.Extractor,
	analyzer *sentiment.Analyzer,
	synthesizer *report.Synthesizer,
	llmClient Completer,
	embedder retrieval.Embedder,
	publisher *events.Publisher,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:       st,
		engine:      engine,
		extractor:   ext,
		analyzer:    analyzer,
		synthesizer: synthesizer,
		llm:         llmClient,
		embedder:    embedder,
		events:      publisher,
		notifier:    notifier,
		logger:      logger,
	}
}

// RegisterParticipant creates a participant record; a duplicate id yields
// store.ErrConflict with the original record untouched.
func (s *Service) RegisterParticipant(ctx context.Context, p store.Participant) error {
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		return err
	}
	s.logger.Info("participant registered", "user", p.ID, "couple", p.CoupleID)
	return nil
}

// StartSession opens a reflection dialogue for the participant. A missing
// partner is tolerated; the engine renders the no-information sentinel.
func (s *Service) StartSession(ctx context.Context, userID string) (uuid.UUID, string, error) {
	user, err := s.store.GetParticipant(ctx, userID)
	if err != nil {
		return uuid.Nil, "", err
	}

	var partner *dialogue.Participant
	partnerRec, err := s.store.GetPartner(ctx, user.CoupleID, user.ID)
	switch {
	case err == nil:
		p := toDialogueParticipant(partnerRec)
		partner = &p
	case errors.Is(err, store.ErrNotFound):
		s.logger.Info("participant has no partner yet", "user", userID)
	default:
		return uuid.Nil, "", err
	}

	token, opening := s.engine.Start(toDialogueParticipant(user), partner)
	return token, opening, nil
}

// SubmitAnswer advances the session by one round.
func (s *Service) SubmitAnswer(ctx context.Context, token uuid.UUID, text string) (*dialogue.Reply, error) {
	reply, err := s.engine.Advance(ctx, token, text)
	if err != nil {
		if errors.Is(err, dialogue.ErrSessionNotFound) || errors.Is(err, dialogue.ErrSessionEnded) || errors.Is(err, dialogue.ErrEmptyAnswer) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return reply, nil
}

func toDialogueParticipant(p *store.Participant) dialogue.Participant {
	return dialogue.Participant{
		ID:          p.ID,
		Name:        p.Name,
		Gender:      p.Gender,
		Birthday:    p.Birthday.Format("2006-01-02"),
		Personality: p.Personality,
		CoupleID:    p.CoupleID,
	}
}
