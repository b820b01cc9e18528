package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doldm1/sai2-exam-generator/internal/exam"
	"github.com/doldm1/sai2-exam-generator/internal/generator"
	"github.com/doldm1/sai2-exam-generator/internal/session"
)

// questionView is the client-facing shape of a question. The correct answer
// and explanation stay server-side until the answer is graded.
type questionView struct {
	Index      int      `json:"index"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	SourcePage int      `json:"source_page"`
}

func viewQuestions(questions []exam.Question) []questionView {
	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{
			Index:      i,
			Question:   q.Question,
			Options:    q.Options,
			SourcePage: q.SourcePage,
		}
	}
	return views
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.logger.Error("creating session", "error", err)
		writeError(w, http.StatusInternalServerError, "creating session")
		return
	}

	s.logger.Info("session created", "session_id", sess.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         sess.ID,
		"created_at": sess.CreatedAt,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":            sess.ID,
		"document_name": sess.DocumentName,
		"metadata":      sess.Metadata,
		"objectives":    sess.Objectives,
		"questions":     viewQuestions(sess.Questions),
		"answered":      len(sess.Answers),
		"created_at":    sess.CreatedAt,
		"updated_at":    sess.UpdatedAt,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error("deleting session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "deleting session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF documents are supported")
		return
	}

	path := filepath.Join(s.uploadDir, sess.ID+".pdf")
	if err := saveUpload(path, file); err != nil {
		s.logger.Error("saving upload", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "saving upload")
		return
	}

	doc, err := s.extractor.Extract(r.Context(), path)
	if err != nil {
		s.logger.Error("extracting document", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "could not extract text from document")
		return
	}
	meta, err := s.extractor.Metadata(r.Context(), path)
	if err != nil {
		s.logger.Warn("reading document metadata", "session_id", sess.ID, "error", err)
	}

	objectives := exam.DetectObjectives(doc.Pages)

	// A new document starts the session over.
	sess.DocumentName = header.Filename
	sess.Pages = doc.Pages
	sess.Metadata = meta
	sess.Objectives = objectives
	sess.Questions = nil
	sess.Answers = make(map[int]exam.AnswerResult)

	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.logger.Error("saving session", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "saving session")
		return
	}

	s.hub.Publish(Event{
		Type:      EventDocumentLoaded,
		SessionID: sess.ID,
		Data: map[string]any{
			"document_name": header.Filename,
			"pages":         doc.TotalPages,
			"objectives":    len(objectives),
		},
	})
	s.logger.Info("document loaded",
		"session_id", sess.ID,
		"document", header.Filename,
		"pages", doc.TotalPages,
		"objectives", len(objectives),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"document_name": header.Filename,
		"total_pages":   doc.TotalPages,
		"metadata":      meta,
		"objectives":    objectives,
	})
}

func saveUpload(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating upload dir: %w", err)
	}
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

type generateRequest struct {
	Count int    `json:"count,omitempty"`
	Topic string `json:"topic,omitempty"`
}

func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if !sess.HasDocument() {
		writeError(w, http.StatusConflict, "no document loaded")
		return
	}

	var req generateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	if req.Count < 0 || req.Count > s.maxCount {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("count must be between 1 and %d (0 or omitted selects the default)", s.maxCount))
		return
	}

	questions, err := s.generator.Generate(r.Context(), generator.Request{
		Pages:      sess.Pages,
		Count:      req.Count,
		Topic:      req.Topic,
		Objectives: sess.Objectives,
	})
	if err != nil {
		s.logger.Error("generating questions", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusBadGateway, "question generation failed")
		return
	}

	// A fresh batch starts a new round.
	sess.Questions = questions
	sess.Answers = make(map[int]exam.AnswerResult)

	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.logger.Error("saving session", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "saving session")
		return
	}

	s.hub.Publish(Event{
		Type:      EventQuestionsGenerated,
		SessionID: sess.ID,
		Data:      map[string]any{"count": len(questions)},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"questions": viewQuestions(questions),
	})
}

type answerRequest struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.QuestionIndex < 0 || req.QuestionIndex >= len(sess.Questions) {
		writeError(w, http.StatusBadRequest, "question_index out of range")
		return
	}

	q := sess.Questions[req.QuestionIndex]
	result := exam.Grade(q.CorrectAnswer, req.Answer, q.Explanation)

	// Re-answering overwrites the previous result.
	sess.Answers[req.QuestionIndex] = result

	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.logger.Error("saving session", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "saving session")
		return
	}

	if err := s.attempts.RecordAttempt(r.Context(), session.Attempt{
		SessionID:      sess.ID,
		Question:       q.Question,
		SelectedAnswer: req.Answer,
		CorrectAnswer:  q.CorrectAnswer,
		IsCorrect:      result.IsCorrect,
		AnsweredAt:     time.Now(),
	}); err != nil {
		// Attempt history is best effort; the learner's answer already counts.
		s.logger.Warn("recording attempt", "session_id", sess.ID, "error", err)
	}

	s.hub.Publish(Event{
		Type:      EventAnswerGraded,
		SessionID: sess.ID,
		Data: map[string]any{
			"question_index": req.QuestionIndex,
			"is_correct":     result.IsCorrect,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"is_correct":     result.IsCorrect,
		"feedback":       result.Feedback,
		"source_excerpt": q.SourceExcerpt,
		"answered":       len(sess.Answers),
		"total":          len(sess.Questions),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if !sess.AllAnswered() {
		writeError(w, http.StatusConflict, "all questions must be answered before the report is available")
		return
	}

	report := s.aggregator.Aggregate(sess.Results())
	writeJSON(w, http.StatusOK, map[string]any{
		"report":         report,
		"recommendation": exam.Recommendation(report.Percentage),
	})
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.PathValue("id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return nil, false
		}
		s.logger.Error("loading session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "loading session")
		return nil, false
	}
	return sess, true
}
