package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Attempt is one graded answer written to the attempt log.
type Attempt struct {
	SessionID      string    `json:"session_id"`
	Question       string    `json:"question"`
	SelectedAnswer string    `json:"selected_answer"`
	CorrectAnswer  string    `json:"correct_answer"`
	IsCorrect      bool      `json:"is_correct"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// AttemptLogger records graded answers for later review. Recording is best
// effort from the caller's point of view; a failed write must not block the
// learner's session.
type AttemptLogger interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
	ListAttempts(ctx context.Context, sessionID string) ([]Attempt, error)
}

// NopLogger discards attempts. Used when no database is configured.
type NopLogger struct{}

func (NopLogger) RecordAttempt(context.Context, Attempt) error { return nil }

func (NopLogger) ListAttempts(context.Context, string) ([]Attempt, error) { return nil, nil }

// PostgresAttemptStore is a PostgreSQL-backed AttemptLogger.
type PostgresAttemptStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAttemptStore creates the attempt store and ensures its table
// exists.
func NewPostgresAttemptStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresAttemptStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	_, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS attempts (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			question TEXT NOT NULL,
			selected_answer TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL,
			answered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, fmt.Errorf("create attempts table: %w", err)
	}

	_, err = pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS attempts_session_idx ON attempts (session_id, answered_at)`)
	if err != nil {
		return nil, fmt.Errorf("create attempts index: %w", err)
	}

	return &PostgresAttemptStore{pool: pool}, nil
}

func (s *PostgresAttemptStore) RecordAttempt(ctx context.Context, attempt Attempt) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	answeredAt := attempt.AnsweredAt
	if answeredAt.IsZero() {
		answeredAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (session_id, question, selected_answer, correct_answer, is_correct, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		attempt.SessionID,
		attempt.Question,
		attempt.SelectedAnswer,
		attempt.CorrectAnswer,
		attempt.IsCorrect,
		answeredAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *PostgresAttemptStore) ListAttempts(ctx context.Context, sessionID string) ([]Attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT session_id, question, selected_answer, correct_answer, is_correct, answered_at
		 FROM attempts
		 WHERE session_id = $1
		 ORDER BY answered_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(
			&a.SessionID,
			&a.Question,
			&a.SelectedAnswer,
			&a.CorrectAnswer,
			&a.IsCorrect,
			&a.AnsweredAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}

	return attempts, nil
}
