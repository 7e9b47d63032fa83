package ratelimiter_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdoodle/pairing/internal/infrastructure/ratelimiter"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: 1,
		MaxBurst:         3,
	})

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("client-1"), "request %d within the burst should pass", i)
	}

	assert.False(t, rl.Allow("client-1"))
}

func TestAllow_SourcesAreIndependent(t *testing.T) {
	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: 1,
		MaxBurst:         1,
	})

	require.True(t, rl.Allow("client-1"))
	require.False(t, rl.Allow("client-1"))

	assert.True(t, rl.Allow("client-2"))
}

func TestAllow_Refills(t *testing.T) {
	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: 100,
		MaxBurst:         1,
	})

	require.True(t, rl.Allow("client-1"))
	require.False(t, rl.Allow("client-1"))

	// 100 tokens/s means one token roughly every 10ms.
	time.Sleep(50 * time.Millisecond)

	assert.True(t, rl.Allow("client-1"))
}

// TestAllow_FractionalRefillCarriesOver checks that sub-token waits
// accumulate: two waits of 0.6 tokens each must add up to a grant
// instead of being floored away on every call.
func TestAllow_FractionalRefillCarriesOver(t *testing.T) {
	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: 10, // one token every 100ms
		MaxBurst:         1,
	})

	require.True(t, rl.Allow("client-1"))
	require.False(t, rl.Allow("client-1"))

	time.Sleep(60 * time.Millisecond)
	first := rl.Allow("client-1")
	time.Sleep(60 * time.Millisecond)
	second := rl.Allow("client-1")

	assert.True(t, first || second, "120ms at 10/s earns a token even across mid-interval calls")
}

// TestAllow_SustainedRetriesAreThrottledNotStarved drains the bucket
// and then retries far more often than the refill interval; the grant
// count must track the configured rate instead of flatlining at zero.
func TestAllow_SustainedRetriesAreThrottledNotStarved(t *testing.T) {
	const ratePerSecond = 100

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: ratePerSecond,
		MaxBurst:         1,
	})

	require.True(t, rl.Allow("client-1"))

	granted := 0
	start := time.Now()
	for time.Since(start) < 300*time.Millisecond {
		if rl.Allow("client-1") {
			granted++
		}
		time.Sleep(2 * time.Millisecond)
	}
	elapsed := time.Since(start)

	ceiling := int(elapsed.Seconds()*ratePerSecond) + 1
	assert.GreaterOrEqual(t, granted, 10, "fast retriers must be throttled, not starved")
	assert.LessOrEqual(t, granted, ceiling)
}

func TestRemaining(t *testing.T) {
	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: 1,
		MaxBurst:         5,
	})

	assert.Equal(t, 5, rl.Remaining("client-1"))

	require.True(t, rl.Allow("client-1"))
	require.True(t, rl.Allow("client-1"))

	assert.Equal(t, 3, rl.Remaining("client-1"))
}

func TestGetSourceKey(t *testing.T) {
	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: 1,
		SourceHeaderKey:  "X-Client-Id",
	})

	// The fallback key is the bare IP: two connections from the same
	// host must land in the same bucket.
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", rl.GetSourceKey(req))

	req.RemoteAddr = "10.0.0.1:5678"
	assert.Equal(t, "10.0.0.1", rl.GetSourceKey(req))

	req.Header.Set("X-Client-Id", "client-42")
	assert.Equal(t, "client-42", rl.GetSourceKey(req))
}

func TestGetMaxBurst_DefaultsToRate(t *testing.T) {
	rl := ratelimiter.New(ratelimiter.Options{MaxRatePerSecond: 7})
	assert.Equal(t, 7, rl.GetMaxBurst())
}
