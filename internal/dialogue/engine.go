package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kizuna-labs/kizuna/internal/llm"
)

const (
	maxRounds     = 10
	maxProbes     = 2
	questionCount = len(questions)
)

// Completer is the slice of the language-model gateway the engine needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Engine drives the bounded five-question reflection dialogue.
type Engine struct {
	llm      Completer
	sessions *SessionStore
	logger   *slog.Logger
}

func NewEngine(llmClient Completer, sessions *SessionStore, logger *slog.Logger) *Engine {
	return &Engine{llm: llmClient, sessions: sessions, logger: logger}
}

// Reply is the engine's answer to one submitted utterance.
type Reply struct {
	Feedback       string `json:"feedback"`
	RoundCount     int    `json:"round_count"`
	Terminated     bool   `json:"terminated"`
	ClosingSummary string `json:"closing_summary,omitempty"`
}

// Start opens a session and returns its token plus the opening empathy
// message and first question. The opening counts as round 1.
func (e *Engine) Start(user Participant, partner *Participant) (uuid.UUID, string) {
	s := &Session{
		Token:      uuid.New(),
		User:       user,
		Partner:    partner,
		RoundCount: 1,
		lastActive: time.Now(),
	}
	e.sessions.put(s)

	e.logger.Info("session started",
		"session", s.Token,
		"user", user.ID,
		"has_partner", partner != nil,
	)
	return s.Token, openingMessage(user.Name)
}

// decision is the model's per-round verdict.
type decision struct {
	Feedback      string `json:"feedback"`
	Probe         bool   `json:"probe"`
	ProbeQuestion string `json:"probe_question"`
}

// Advance applies one user utterance to the session. The session lock is
// held across the model calls so rounds within a session are strictly
// ordered; different sessions proceed independently.
func (e *Engine) Advance(ctx context.Context, token uuid.UUID, utterance string) (*Reply, error) {
	s, err := e.sessions.get(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Terminated {
		return nil, ErrSessionEnded
	}
	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return nil, ErrEmptyAnswer
	}

	newRound := s.RoundCount + 1
	partnerName := s.PartnerName()

	var (
		feedback  string
		nextIndex = s.QuestionIndex
		newProbes = s.ProbesUsed
	)

	if strings.EqualFold(trimmed, SkipSignal) {
		// Skip always advances, regardless of probe state or answer quality.
		feedback = "Understood, let's move on."
		nextIndex = s.QuestionIndex + 1
		newProbes = 0
	} else {
		dec, err := e.decide(ctx, s, trimmed)
		if err != nil {
			return nil, fmt.Errorf("round decision: %w", err)
		}

		if dec.Probe && dec.ProbeQuestion != "" && s.ProbesUsed < maxProbes && newRound < maxRounds {
			feedback = dec.Feedback + "\n\n" + dec.ProbeQuestion
			newProbes = s.ProbesUsed + 1
		} else {
			feedback = dec.Feedback
			nextIndex = s.QuestionIndex + 1
			newProbes = 0
		}
	}

	terminal := nextIndex >= questionCount || newRound >= maxRounds
	if terminal {
		s.ClosingSummary = e.closingSummary(ctx, s, trimmed)
		s.Terminated = true
	} else if nextIndex != s.QuestionIndex {
		feedback = feedback + "\n\n" + questionText(nextIndex, partnerName)
	}

	s.Exchanges = append(s.Exchanges, Exchange{
		Round:         newRound,
		QuestionIndex: s.QuestionIndex,
		Utterance:     trimmed,
		Feedback:      feedback,
		Probes:        newProbes,
	})
	s.RoundCount = newRound
	s.QuestionIndex = nextIndex
	s.ProbesUsed = newProbes
	s.lastActive = time.Now()

	e.logger.Info("round advanced",
		"session", s.Token,
		"round", s.RoundCount,
		"question", s.QuestionIndex,
		"probes", s.ProbesUsed,
		"terminated", s.Terminated,
	)

	return &Reply{
		Feedback:       feedback,
		RoundCount:     s.RoundCount,
		Terminated:     s.Terminated,
		ClosingSummary: s.ClosingSummary,
	}, nil
}

// Finalize marks the session terminated (generating a closing summary if the
// dialogue had not reached one) and returns an immutable snapshot for
// persistence.
func (e *Engine) Finalize(ctx context.Context, token uuid.UUID) (Snapshot, error) {
	s, err := e.sessions.get(token)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Terminated {
		s.ClosingSummary = e.closingSummary(ctx, s, "")
		s.Terminated = true
	}
	return s.snapshot(), nil
}

// Remove drops a session from the store after its snapshot is persisted.
func (e *Engine) Remove(token uuid.UUID) {
	e.sessions.Delete(token)
}

func (e *Engine) systemPrompt(s *Session) string {
	partner := s.Partner
	p := func(v string) string {
		if partner == nil {
			return NoInformation
		}
		return v
	}
	var partnerFields Participant
	if partner != nil {
		partnerFields = *partner
	}
	return fmt.Sprintf(coachSystemPrompt,
		s.User.ID, s.User.Name, s.User.Gender, s.User.Birthday, s.User.Personality, s.User.CoupleID,
		p(partnerFields.ID), p(partnerFields.Name), p(partnerFields.Gender), p(partnerFields.Birthday), p(partnerFields.Personality),
	)
}

// decide asks the model for feedback plus a probe-or-advance verdict. A
// malformed verdict degrades to "acknowledge and advance" carrying the raw
// text as feedback.
func (e *Engine) decide(ctx context.Context, s *Session, utterance string) (decision, error) {
	prompt := fmt.Sprintf(decisionPrompt, s.Transcript(), utterance, s.ProbesUsed)

	raw, err := e.llm.Complete(ctx, e.systemPrompt(s), prompt)
	if err != nil {
		return decision{}, err
	}

	var dec decision
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &dec); err != nil {
		e.logger.Warn("round decision was not valid JSON, advancing", "session", s.Token, "error", err)
		return decision{Feedback: strings.TrimSpace(raw)}, nil
	}
	return dec, nil
}

// closingSummary generates the ~200-character wrap-up. pending is the final
// utterance of a terminal round, not yet recorded on the session. Failure
// degrades to a fixed closing so termination is never blocked by the model.
func (e *Engine) closingSummary(ctx context.Context, s *Session, pending string) string {
	transcript := s.Transcript()
	if pending != "" {
		transcript += "\nUser: " + pending
	}
	raw, err := e.llm.Complete(ctx, e.systemPrompt(s), fmt.Sprintf(summaryPrompt, transcript))
	if err != nil {
		e.logger.Warn("closing summary generation failed, using fallback", "session", s.Token, "error", err)
		return fallbackClosing
	}
	return strings.TrimSpace(raw)
}
