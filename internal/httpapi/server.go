// Package httpapi exposes the exam-preparation workflow over HTTP: session
// lifecycle, document upload, question generation, answer grading, the
// performance report and a websocket event feed.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/doldm1/sai2-exam-generator/internal/document"
	"github.com/doldm1/sai2-exam-generator/internal/exam"
	"github.com/doldm1/sai2-exam-generator/internal/generator"
	"github.com/doldm1/sai2-exam-generator/internal/session"
)

const (
	defaultUploadDir = "./storage/uploads"
	defaultMaxUpload = 50 << 20
	defaultMaxCount  = 10
)

// Server holds the API's dependencies.
type Server struct {
	sessions   session.Store
	extractor  document.Extractor
	generator  *generator.Generator
	aggregator *exam.Aggregator
	attempts   session.AttemptLogger
	hub        *Hub
	uploadDir  string
	maxUpload  int64
	maxCount   int
	logger     *slog.Logger
	readiness  []readinessCheck
}

type readinessCheck struct {
	name  string
	check func(context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithAggregator replaces the default performance aggregator.
func WithAggregator(a *exam.Aggregator) Option {
	return func(s *Server) { s.aggregator = a }
}

// WithAttemptLogger sets the attempt log backend.
func WithAttemptLogger(l session.AttemptLogger) Option {
	return func(s *Server) { s.attempts = l }
}

// WithUploadDir sets where uploaded documents are stored.
func WithUploadDir(dir string) Option {
	return func(s *Server) { s.uploadDir = dir }
}

// WithMaxUpload bounds the accepted upload size in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

// WithMaxQuestionCount bounds the per-round question count.
func WithMaxQuestionCount(n int) Option {
	return func(s *Server) { s.maxCount = n }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithReadinessCheck adds a dependency probe to the readyz endpoint.
func WithReadinessCheck(name string, check func(context.Context) error) Option {
	return func(s *Server) {
		s.readiness = append(s.readiness, readinessCheck{name: name, check: check})
	}
}

// New creates the API server.
func New(sessions session.Store, extractor document.Extractor, gen *generator.Generator, opts ...Option) *Server {
	s := &Server{
		sessions:   sessions,
		extractor:  extractor,
		generator:  gen,
		aggregator: exam.NewAggregator(nil),
		attempts:   session.NopLogger{},
		hub:        NewHub(),
		uploadDir:  defaultUploadDir,
		maxUpload:  defaultMaxUpload,
		maxCount:   defaultMaxCount,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/document", s.handleUploadDocument)
	mux.HandleFunc("POST /api/sessions/{id}/questions", s.handleGenerateQuestions)
	mux.HandleFunc("POST /api/sessions/{id}/answers", s.handleSubmitAnswer)
	mux.HandleFunc("GET /api/sessions/{id}/report", s.handleReport)
	mux.HandleFunc("GET /api/sessions/{id}/report.xlsx", s.handleReportExport)
	mux.HandleFunc("GET /api/sessions/{id}/events", s.handleEvents)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, probe := range s.readiness {
		if err := probe.check(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "dependency", probe.name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":     "unavailable",
				"dependency": probe.name,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
