package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LoginSessionKey returns the cache key holding a user's active login JTI.
func (r *CacheKeyStruct) LoginSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// ActiveAttemptKey returns the cache key holding a user's in-progress attempt.
func (r *CacheKeyStruct) ActiveAttemptKey(userID int) string {
	return fmt.Sprintf("user:%d:attempt", userID)
}

// ExamPayloadKey returns the cache key for an exam's sanitized question payload.
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

var CacheKey = NewCacheKeyStruct()
