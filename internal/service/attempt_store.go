package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrNoActiveAttempt is returned when a caller has no exam in progress.
var ErrNoActiveAttempt = errors.New("no active attempt")

// AttemptStore keeps the per-user in-progress attempt record. A user has
// at most one; Put overwrites. Take must be atomic: of two concurrent
// callers, exactly one receives the record and the other observes absence.
type AttemptStore interface {
	Put(ctx context.Context, userID int, attempt *model.ActiveAttempt) error
	Get(ctx context.Context, userID int) (*model.ActiveAttempt, error)
	Take(ctx context.Context, userID int) (*model.ActiveAttempt, error)
	Clear(ctx context.Context, userID int) error
}

// RedisAttemptStore is the Redis-backed AttemptStore. Records expire with
// the login session lifetime; an abandoned attempt simply ages out.
type RedisAttemptStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisAttemptStore creates a RedisAttemptStore with the given record TTL.
func NewRedisAttemptStore(rdb *redis.Client, ttl time.Duration) *RedisAttemptStore {
	return &RedisAttemptStore{rdb: rdb, ttl: ttl}
}

// Put stores the attempt record, overwriting any existing one.
func (s *RedisAttemptStore) Put(ctx context.Context, userID int, attempt *model.ActiveAttempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	return s.rdb.Set(ctx, config.CacheKey.ActiveAttemptKey(userID), raw, s.ttl).Err()
}

// Get returns the attempt record without consuming it.
func (s *RedisAttemptStore) Get(ctx context.Context, userID int) (*model.ActiveAttempt, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.ActiveAttemptKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoActiveAttempt
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return decodeAttempt(raw)
}

// Take atomically consumes the attempt record via GETDEL. Only one of any
// number of concurrent callers receives it; the rest get ErrNoActiveAttempt.
func (s *RedisAttemptStore) Take(ctx context.Context, userID int) (*model.ActiveAttempt, error) {
	raw, err := s.rdb.GetDel(ctx, config.CacheKey.ActiveAttemptKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoActiveAttempt
		}
		return nil, fmt.Errorf("take attempt: %w", err)
	}
	return decodeAttempt(raw)
}

// Clear discards the attempt record, if any.
func (s *RedisAttemptStore) Clear(ctx context.Context, userID int) error {
	return s.rdb.Del(ctx, config.CacheKey.ActiveAttemptKey(userID)).Err()
}

func decodeAttempt(raw []byte) (*model.ActiveAttempt, error) {
	attempt := &model.ActiveAttempt{}
	if err := json.Unmarshal(raw, attempt); err != nil {
		return nil, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return attempt, nil
}
