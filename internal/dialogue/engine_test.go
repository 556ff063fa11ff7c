package dialogue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedLLM replies with the same decision on every call and records the
// prompts it saw.
type scriptedLLM struct {
	decision string
	err      error
	systems  []string
	prompts  []string
}

func (s *scriptedLLM) Complete(_ context.Context, system, prompt string) (string, error) {
	s.systems = append(s.systems, system)
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if strings.Contains(prompt, "closing message") {
		return "You reflected openly today. Keep going!", nil
	}
	return s.decision, nil
}

func testUser() Participant {
	return Participant{ID: "u1", Name: "Aoi", Gender: "female", Birthday: "1990-04-01", Personality: "INFP", CoupleID: "c1"}
}

func testPartner() *Participant {
	return &Participant{ID: "u2", Name: "Ken", Gender: "male", Birthday: "1989-11-20", Personality: "ESTJ", CoupleID: "c1"}
}

func newTestEngine(llm *scriptedLLM) *Engine {
	return NewEngine(llm, NewSessionStore(), discardLogger())
}

func TestStart_EmitsOpeningAndFirstQuestion(t *testing.T) {
	e := newTestEngine(&scriptedLLM{})
	token, opening := e.Start(testUser(), testPartner())

	if token == uuid.Nil {
		t.Fatal("expected a session token")
	}
	if !strings.Contains(opening, "Aoi") {
		t.Errorf("opening should address the user by name: %s", opening)
	}
	if !strings.Contains(opening, questions[0]) {
		t.Errorf("opening should include the first question: %s", opening)
	}
}

func TestAdvance_UnknownToken(t *testing.T) {
	e := newTestEngine(&scriptedLLM{})
	if _, err := e.Advance(context.Background(), uuid.New(), "hello"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAdvance_EmptyInput(t *testing.T) {
	e := newTestEngine(&scriptedLLM{})
	token, _ := e.Start(testUser(), testPartner())
	if _, err := e.Advance(context.Background(), token, "   "); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
}

func TestAdvance_ProbeCapAtTwo(t *testing.T) {
	llm := &scriptedLLM{decision: `{"feedback": "I hear you.", "probe": true, "probe_question": "Can you say more?"}`}
	e := newTestEngine(llm)
	token, _ := e.Start(testUser(), testPartner())

	// The model wants to probe forever; probes must cap at 2, then advance.
	r1, err := e.Advance(context.Background(), token, "it was fine")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(r1.Feedback, "Can you say more?") {
		t.Errorf("expected probe question on first probe: %s", r1.Feedback)
	}

	if _, err := e.Advance(context.Background(), token, "still fine"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r3, err := e.Advance(context.Background(), token, "really, fine")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(r3.Feedback, "Can you say more?") {
		t.Errorf("third answer to same question must advance, got: %s", r3.Feedback)
	}

	s, err := e.sessions.get(token)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if s.QuestionIndex != 1 {
		t.Errorf("expected question index 1 after probe cap, got %d", s.QuestionIndex)
	}
	if s.ProbesUsed != 0 {
		t.Errorf("expected probe counter reset, got %d", s.ProbesUsed)
	}
	for _, ex := range s.Exchanges {
		if ex.Probes > maxProbes {
			t.Errorf("probes exceeded cap: %d", ex.Probes)
		}
	}
}

func TestAdvance_SkipAdvancesAndResetsProbes(t *testing.T) {
	llm := &scriptedLLM{decision: `{"feedback": "I hear you.", "probe": true, "probe_question": "More?"}`}
	e := newTestEngine(llm)
	token, _ := e.Start(testUser(), testPartner())

	if _, err := e.Advance(context.Background(), token, "meh"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, err := e.Advance(context.Background(), token, "Skip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply.Feedback, "Ken") {
		t.Errorf("next question should name the partner: %s", reply.Feedback)
	}

	s, _ := e.sessions.get(token)
	if s.QuestionIndex != 1 {
		t.Errorf("skip must advance the question, got index %d", s.QuestionIndex)
	}
	if s.ProbesUsed != 0 {
		t.Errorf("skip must reset probes, got %d", s.ProbesUsed)
	}
}

func TestAdvance_RoundCapForcesTermination(t *testing.T) {
	llm := &scriptedLLM{decision: `{"feedback": "I hear you.", "probe": true, "probe_question": "More?"}`}
	e := newTestEngine(llm)
	token, _ := e.Start(testUser(), testPartner())

	var last *Reply
	for i := 0; i < maxRounds; i++ {
		reply, err := e.Advance(context.Background(), token, "an answer")
		if err != nil {
			t.Fatalf("round %d: unexpected error: %v", i, err)
		}
		last = reply
		if reply.RoundCount > maxRounds {
			t.Fatalf("round count exceeded cap: %d", reply.RoundCount)
		}
		if reply.Terminated {
			break
		}
	}

	if last == nil || !last.Terminated {
		t.Fatal("session must terminate by the round cap")
	}
	if last.ClosingSummary == "" {
		t.Error("termination must carry a closing summary")
	}

	// Terminal state is absorbing.
	if _, err := e.Advance(context.Background(), token, "one more"); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded, got %v", err)
	}
}

func TestAdvance_AllQuestionsCompleteEarly(t *testing.T) {
	llm := &scriptedLLM{decision: `{"feedback": "Lovely.", "probe": false, "probe_question": ""}`}
	e := newTestEngine(llm)
	token, _ := e.Start(testUser(), testPartner())

	var last *Reply
	for i := 0; i < questionCount; i++ {
		reply, err := e.Advance(context.Background(), token, "a good answer")
		if err != nil {
			t.Fatalf("question %d: unexpected error: %v", i, err)
		}
		last = reply
	}

	if !last.Terminated {
		t.Fatal("session must terminate after the fifth question")
	}
	if last.ClosingSummary == "" {
		t.Error("expected a closing summary")
	}
	if last.RoundCount != questionCount+1 {
		t.Errorf("expected round count %d, got %d", questionCount+1, last.RoundCount)
	}
}

func TestAdvance_MalformedDecisionAdvances(t *testing.T) {
	llm := &scriptedLLM{decision: "That sounds hard. Tell me more next time."}
	e := newTestEngine(llm)
	token, _ := e.Start(testUser(), testPartner())

	reply, err := e.Advance(context.Background(), token, "today was rough")
	if err != nil {
		t.Fatalf("malformed decision must not fail the round: %v", err)
	}
	if !strings.Contains(reply.Feedback, "That sounds hard.") {
		t.Errorf("raw text should be used as feedback: %s", reply.Feedback)
	}

	s, _ := e.sessions.get(token)
	if s.QuestionIndex != 1 {
		t.Errorf("malformed decision should advance, got index %d", s.QuestionIndex)
	}
}

func TestAdvance_UpstreamFailureSurfaces(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("gateway timeout")}
	e := newTestEngine(llm)
	token, _ := e.Start(testUser(), testPartner())

	if _, err := e.Advance(context.Background(), token, "hello"); err == nil {
		t.Fatal("expected upstream failure to surface")
	}

	// State must be untouched by the failed round.
	s, _ := e.sessions.get(token)
	if s.RoundCount != 1 || len(s.Exchanges) != 0 {
		t.Errorf("failed round must not mutate state: round=%d exchanges=%d", s.RoundCount, len(s.Exchanges))
	}
}

func TestPartnerAbsence_SentinelInPrompts(t *testing.T) {
	llm := &scriptedLLM{decision: `{"feedback": "ok", "probe": false, "probe_question": ""}`}
	e := newTestEngine(llm)
	token, _ := e.Start(testUser(), nil)

	if _, err := e.Advance(context.Background(), token, "fine"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(llm.systems) == 0 {
		t.Fatal("expected a model call")
	}
	sys := llm.systems[0]
	if !strings.Contains(sys, NoInformation) {
		t.Errorf("system prompt must carry the sentinel for absent partner:\n%s", sys)
	}
	if strings.Contains(sys, "Name: \n") {
		t.Errorf("empty string leaked into partner fields:\n%s", sys)
	}
}

func TestFinalize_ReturnsSnapshotAndTerminates(t *testing.T) {
	llm := &scriptedLLM{decision: `{"feedback": "ok", "probe": false, "probe_question": ""}`}
	e := newTestEngine(llm)
	token, _ := e.Start(testUser(), testPartner())

	if _, err := e.Advance(context.Background(), token, "an answer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := e.Finalize(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.UserID != "u1" || snap.PartnerID != "u2" {
		t.Errorf("unexpected snapshot identities: %+v", snap)
	}
	if snap.ClosingSummary == "" {
		t.Error("finalize before termination must generate a closing summary")
	}
	if !strings.Contains(snap.Transcript, "an answer") {
		t.Errorf("transcript missing exchange: %s", snap.Transcript)
	}

	if _, err := e.Advance(context.Background(), token, "more"); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded after finalize, got %v", err)
	}
}
