package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doldm1/sai2-exam-generator/internal/exam"
	"github.com/doldm1/sai2-exam-generator/internal/platform/cache"
)

const keyPrefix = "session:"

// RedisStore is a Redis-backed Store. Sessions survive process restarts and
// expire after the configured TTL of inactivity; every Save refreshes it.
type RedisStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(c *cache.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        generateID(),
		Answers:   make(map[int]exam.AnswerResult),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cache.SetJSON(ctx, keyPrefix+sess.ID, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.cache.GetJSON(ctx, keyPrefix+id, &sess)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Answers == nil {
		sess.Answers = make(map[int]exam.AnswerResult)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now()
	if err := s.cache.SetJSON(ctx, keyPrefix+sess.ID, sess, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
