// Package session holds the per-learner exam state: the loaded document, the
// generated questions and the answers given so far. Stores are pluggable; the
// in-memory store is the default, Redis adds persistence across restarts.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/doldm1/sai2-exam-generator/internal/document"
	"github.com/doldm1/sai2-exam-generator/internal/exam"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Session is one exam-preparation session. A session is created empty, gets a
// document loaded into it, then accumulates questions and answers.
type Session struct {
	ID           string                    `json:"id"`
	DocumentName string                    `json:"document_name,omitempty"`
	Pages        map[int]string            `json:"pages,omitempty"`
	Metadata     document.Metadata         `json:"metadata,omitempty"`
	Objectives   []string                  `json:"objectives,omitempty"`
	Questions    []exam.Question           `json:"questions,omitempty"`
	Answers      map[int]exam.AnswerResult `json:"answers,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// HasDocument reports whether a document has been loaded.
func (s *Session) HasDocument() bool {
	return len(s.Pages) > 0
}

// AllAnswered reports whether every generated question has an answer.
func (s *Session) AllAnswered() bool {
	if len(s.Questions) == 0 {
		return false
	}
	for i := range s.Questions {
		if _, ok := s.Answers[i]; !ok {
			return false
		}
	}
	return true
}

// Results flattens the answered questions into aggregator input, in question
// order.
func (s *Session) Results() []exam.AttemptResult {
	results := make([]exam.AttemptResult, 0, len(s.Answers))
	for i, q := range s.Questions {
		answer, ok := s.Answers[i]
		if !ok {
			continue
		}
		results = append(results, exam.AttemptResult{
			Question:  q.Question,
			IsCorrect: answer.IsCorrect,
		})
	}
	return results
}

// clone returns an independent copy so store reads and writes have snapshot
// semantics, like the Redis store's JSON round-trip.
func (s *Session) clone() *Session {
	c := *s
	if s.Pages != nil {
		c.Pages = maps.Clone(s.Pages)
	}
	c.Objectives = slices.Clone(s.Objectives)
	c.Questions = slices.Clone(s.Questions)
	if s.Answers != nil {
		c.Answers = maps.Clone(s.Answers)
	}
	return &c
}

// Store persists sessions.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (s *MemoryStore) Create(_ context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:        generateID(),
		Answers:   make(map[int]exam.AnswerResult),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess.clone()
	return sess, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess.clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, sess.ID)
	}
	sess.UpdatedAt = time.Now()
	s.sessions[sess.ID] = sess.clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
