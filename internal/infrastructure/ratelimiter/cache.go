package ratelimiter

import (
	"errors"
	"time"
)

// ErrCacheMiss signals an absent or expired entry. The limiter fails
// open on it with a full bucket.
var ErrCacheMiss = errors.New("cache miss")

// GetterSetter stores bucket counters keyed by source. The in-memory
// implementation suffices for a single coordinator instance; a shared
// cache slots in here if the API ever runs replicated.
type GetterSetter interface {
	Get(key string) (int, error)
	Set(key string, value int) error
	SetWithExpiration(key string, value int, expiration time.Duration) error
	Close() error
}
