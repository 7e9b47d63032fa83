package ratelimiter

import (
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	bucketKeyPrefix   = "rl:bucket:"
	lastFillKeyPrefix = "rl:fill:"
	defaultSourceKey  = "X-RateLimit-Key"
)

type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

// RateLimiter is a token bucket per source key, with bucket state kept
// in a pluggable cache so the limiter itself stays stateless.
type RateLimiter struct {
	ratePerMilli    float64
	maxBurst        int
	cache           GetterSetter
	cacheTTL        time.Duration
	sourceHeaderKey string
	// Per-key locks keep read-refill-write atomic for each source.
	locks sync.Map // map[string]*sync.Mutex
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	Cache            GetterSetter
	CacheTTL         time.Duration
	SourceHeaderKey  string
}

func New(options Options) Limiter {
	if options.Cache == nil {
		options.Cache = NewInMemory()
	}
	if options.CacheTTL == 0 {
		options.CacheTTL = 10 * time.Second
	}
	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond
	}
	if options.SourceHeaderKey == "" {
		options.SourceHeaderKey = defaultSourceKey
	}

	return &RateLimiter{
		ratePerMilli:    float64(options.MaxRatePerSecond) / 1000.0,
		maxBurst:        options.MaxBurst,
		cache:           options.Cache,
		cacheTTL:        options.CacheTTL,
		sourceHeaderKey: options.SourceHeaderKey,
	}
}

type bucketState struct {
	tokens   int
	lastFill int64 // Unix milliseconds
}

func (rl *RateLimiter) lockFor(sourceKey string) *sync.Mutex {
	lock, _ := rl.locks.LoadOrStore(sourceKey, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (rl *RateLimiter) getState(sourceKey string) bucketState {
	tokens, tokensErr := rl.cache.Get(bucketKeyPrefix + sourceKey)
	lastFill, fillErr := rl.cache.Get(lastFillKeyPrefix + sourceKey)

	// Cache miss and cache failure both fail open with a full bucket.
	if tokensErr != nil || fillErr != nil {
		return bucketState{tokens: rl.maxBurst, lastFill: time.Now().UnixMilli()}
	}

	return bucketState{tokens: tokens, lastFill: int64(lastFill)}
}

func (rl *RateLimiter) setState(sourceKey string, state bucketState) {
	_ = rl.cache.SetWithExpiration(bucketKeyPrefix+sourceKey, state.tokens, rl.cacheTTL)
	_ = rl.cache.SetWithExpiration(lastFillKeyPrefix+sourceKey, int(state.lastFill), rl.cacheTTL)
}

func (rl *RateLimiter) refill(state bucketState, now int64) bucketState {
	elapsed := now - state.lastFill
	if elapsed <= 0 {
		return state
	}

	earned := int(float64(elapsed) * rl.ratePerMilli)
	if earned == 0 {
		// Not a whole token yet; leave lastFill alone so the fraction
		// keeps accruing across calls.
		return state
	}

	tokens := state.tokens + earned
	if tokens >= rl.maxBurst {
		return bucketState{tokens: rl.maxBurst, lastFill: now}
	}

	// Advance lastFill only by the time the earned tokens account for;
	// the sub-token remainder carries into the next refill.
	return bucketState{
		tokens:   tokens,
		lastFill: state.lastFill + int64(float64(earned)/rl.ratePerMilli),
	}
}

func (rl *RateLimiter) Allow(sourceKey string) bool {
	lock := rl.lockFor(sourceKey)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UnixMilli()
	state := rl.refill(rl.getState(sourceKey), now)

	if state.tokens > 0 {
		state.tokens--
		rl.setState(sourceKey, state)
		return true
	}

	rl.setState(sourceKey, state)
	return false
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	lock := rl.lockFor(sourceKey)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UnixMilli()
	state := rl.refill(rl.getState(sourceKey), now)
	rl.setState(sourceKey, state)

	return state.tokens
}

func (rl *RateLimiter) GetMaxBurst() int {
	return rl.maxBurst
}

func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if key := r.Header.Get(rl.sourceHeaderKey); key != "" {
		return key
	}

	// Fall back to the client IP. The port is stripped so every
	// connection from the same host shares one bucket.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
