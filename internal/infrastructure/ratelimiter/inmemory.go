package ratelimiter

import (
	"sync"
	"time"
)

const cleanupInterval = time.Minute

type entry struct {
	value     int
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemory is a map-backed GetterSetter with lazy expiry on reads and
// a background pass that reclaims abandoned source keys.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]entry

	stop     chan struct{}
	stopOnce sync.Once
}

func NewInMemory() GetterSetter {
	im := &InMemory{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}

	go im.cleanupLoop()

	return im
}

func (im *InMemory) Get(key string) (int, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	e, ok := im.entries[key]
	if !ok || e.expired(time.Now()) {
		return 0, ErrCacheMiss
	}

	return e.value, nil
}

func (im *InMemory) Set(key string, value int) error {
	return im.SetWithExpiration(key, value, 0)
}

func (im *InMemory) SetWithExpiration(key string, value int, expiration time.Duration) error {
	e := entry{value: value}
	if expiration > 0 {
		e.expiresAt = time.Now().Add(expiration)
	}

	im.mu.Lock()
	im.entries[key] = e
	im.mu.Unlock()

	return nil
}

func (im *InMemory) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			im.removeExpired()
		case <-im.stop:
			return
		}
	}
}

func (im *InMemory) removeExpired() {
	now := time.Now()

	im.mu.Lock()
	defer im.mu.Unlock()

	for key, e := range im.entries {
		if e.expired(now) {
			delete(im.entries, key)
		}
	}
}

func (im *InMemory) Close() error {
	im.stopOnce.Do(func() {
		close(im.stop)
	})
	return nil
}
