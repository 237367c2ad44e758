package services

import (
	"time"

	"cep-distance-service/internal/domain"
)

// CachePolicy configures one in-process resolver cache.
type CachePolicy struct {
	// Capacity bounds the cache with LRU eviction; 0 keeps every entry.
	Capacity int
	// AbsentTTL expires unresolved entries so they are retried; 0 keeps
	// them for the life of the process. Resolved entries never expire.
	AbsentTTL time.Duration
	Now       func() time.Time
}

func absentTTL[T any](ttl time.Duration) func(domain.Resolution[T]) time.Duration {
	return func(r domain.Resolution[T]) time.Duration {
		if r.OK() {
			return 0
		}
		return ttl
	}
}
