package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kizuna-labs/kizuna/internal/dialogue"
	"github.com/kizuna-labs/kizuna/internal/service"
	"github.com/kizuna-labs/kizuna/internal/store"
)

const defaultNotesLimit = 20

type registerRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Birthday    string `json:"birthday"` // YYYY-MM-DD
	Personality string `json:"personality"`
	CoupleID    string `json:"couple_id"`
}

type answerRequest struct {
	Text string `json:"text"`
}

type reflectionRequest struct {
	FuturePlans   string `json:"future_plans"`
	WantToDiscuss string `json:"want_to_discuss"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) registerParticipant(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ID == "" || req.Name == "" || req.CoupleID == "" {
		writeError(w, http.StatusBadRequest, "id, name and couple_id are required")
		return
	}
	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		writeError(w, http.StatusBadRequest, "birthday must be YYYY-MM-DD")
		return
	}

	err = s.coach.RegisterParticipant(r.Context(), store.Participant{
		ID:          req.ID,
		Name:        req.Name,
		Gender:      req.Gender,
		Birthday:    birthday,
		Personality: req.Personality,
		CoupleID:    req.CoupleID,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	token, opening, err := s.coach.StartSession(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"token":   token.String(),
		"message": opening,
	})
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	token, ok := parseToken(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	reply, err := s.coach.SubmitAnswer(r.Context(), token, req.Text)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request) {
	token, ok := parseToken(w, r)
	if !ok {
		return
	}
	result, err := s.coach.SaveSession(r.Context(), token)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) submitSummarizedAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	summary, err := s.coach.SubmitSummarizedAnswer(r.Context(), chi.URLParam(r, "userID"), req.Text)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"summary": summary})
}

func (s *Server) historicalReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.coach.HistoricalReport(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) semanticReport(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.coach.SemanticReport(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}

func (s *Server) latestEmotionAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := s.coach.LatestEmotionAlert(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"label":                 alert.Label,
		"glyph":                 alert.Glyph,
		"message":               alert.Message,
		"average_score":         alert.AverageScore,
		"max_magnitude":         alert.MaxMagnitude,
		"most_negative_mention": alert.MostNegativeMention,
		"created_at":            alert.CreatedAt,
	})
}

func (s *Server) coupleWellbeing(w http.ResponseWriter, r *http.Request) {
	wb, err := s.coach.CoupleWellbeing(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"couple_id":  wb.CoupleID,
		"score":      wb.Score,
		"updated_at": wb.UpdatedAt,
	})
}

func (s *Server) dialogueAdvice(w http.ResponseWriter, r *http.Request) {
	advice, err := s.coach.DialogueAdvice(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}

func (s *Server) latestDialogueAdvice(w http.ResponseWriter, r *http.Request) {
	advice, err := s.coach.LatestDialogueAdvice(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}

func (s *Server) submitReflectionNote(w http.ResponseWriter, r *http.Request) {
	var req reflectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.FuturePlans == "" && req.WantToDiscuss == "" {
		writeError(w, http.StatusBadRequest, "at least one of future_plans, want_to_discuss is required")
		return
	}

	if err := s.coach.SubmitReflectionNote(r.Context(), chi.URLParam(r, "userID"), req.FuturePlans, req.WantToDiscuss); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "stored"})
}

func (s *Server) reflectionNotes(w http.ResponseWriter, r *http.Request) {
	forPartner := r.URL.Query().Get("scope") == "partner"
	limit := defaultNotesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	notes, err := s.coach.ReflectionNotes(r.Context(), chi.URLParam(r, "userID"), forPartner, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes, "count": len(notes)})
}

func parseToken(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	token, err := uuid.Parse(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "token must be a UUID")
		return uuid.Nil, false
	}
	return token, true
}

// writeServiceError maps service errors onto HTTP statuses. Anything
// unrecognized becomes an opaque 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound) || errors.Is(err, dialogue.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, dialogue.ErrEmptyAnswer):
		writeError(w, http.StatusBadRequest, "answer must not be empty")
	case errors.Is(err, dialogue.ErrSessionEnded):
		writeError(w, http.StatusConflict, "session already ended")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, service.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream service failure")
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
