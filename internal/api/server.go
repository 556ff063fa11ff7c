package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/kizuna-labs/kizuna/internal/dialogue"
	"github.com/kizuna-labs/kizuna/internal/report"
	"github.com/kizuna-labs/kizuna/internal/service"
	"github.com/kizuna-labs/kizuna/internal/store"
)

// Coach is the operation surface the HTTP layer exposes; *service.Service
// implements it.
type Coach interface {
	RegisterParticipant(ctx context.Context, p store.Participant) error
	StartSession(ctx context.Context, userID string) (uuid.UUID, string, error)
	SubmitAnswer(ctx context.Context, token uuid.UUID, text string) (*dialogue.Reply, error)
	SaveSession(ctx context.Context, token uuid.UUID) (*service.SaveResult, error)
	SubmitSummarizedAnswer(ctx context.Context, userID, text string) (string, error)
	HistoricalReport(ctx context.Context, userID string) (report.Report, error)
	SemanticReport(ctx context.Context, userID string) (map[string]string, error)
	LatestEmotionAlert(ctx context.Context, userID string) (*store.EmotionAlertRecord, error)
	DialogueAdvice(ctx context.Context, userID string) (string, error)
	LatestDialogueAdvice(ctx context.Context, userID string) (string, error)
	SubmitReflectionNote(ctx context.Context, userID, futurePlans, wantToDiscuss string) error
	ReflectionNotes(ctx context.Context, userID string, forPartner bool, limit int) ([]store.ReflectionNote, error)
	CoupleWellbeing(ctx context.Context, userID string) (*store.CoupleWellbeing, error)
}

type Server struct {
	router *chi.Mux
	port   int
	coach  Coach
	logger *slog.Logger
}

func NewServer(port int, coach Coach, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		coach:  coach,
		logger: logger,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/participants", s.registerParticipant)
		r.Post("/participants/{userID}/sessions", s.startSession)
		r.Post("/participants/{userID}/answers", s.submitSummarizedAnswer)
		r.Get("/participants/{userID}/report", s.historicalReport)
		r.Post("/participants/{userID}/semantic-report", s.semanticReport)
		r.Get("/participants/{userID}/alert", s.latestEmotionAlert)
		r.Get("/participants/{userID}/wellbeing", s.coupleWellbeing)
		r.Post("/participants/{userID}/advice", s.dialogueAdvice)
		r.Get("/participants/{userID}/advice", s.latestDialogueAdvice)
		r.Post("/participants/{userID}/reflections", s.submitReflectionNote)
		r.Get("/participants/{userID}/reflections", s.reflectionNotes)

		r.Post("/sessions/{token}/answers", s.submitAnswer)
		r.Post("/sessions/{token}/save", s.saveSession)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for embedding in a custom http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}
