package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(config *Config) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	l := NewLimiter(config)
	l.now = clock.Now
	return l, clock
}

func TestTokenBucket_Take(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now)

	for i := 0; i < 10; i++ {
		allowed, remaining, _ := bucket.take(now)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}

	allowed, remaining, resetTime := bucket.take(now)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(10*time.Second), resetTime)
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now)
	for i := 0; i < 10; i++ {
		bucket.take(now)
	}

	allowed, _, _ := bucket.take(now.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token refilled")

	allowed, _, _ = bucket.take(now.Add(1100 * time.Millisecond))
	assert.False(t, allowed)

	// Refill never exceeds capacity
	_, remaining, _ := bucket.take(now.Add(time.Hour))
	assert.Equal(t, 9, remaining)
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/templates", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/templates", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 6*time.Second, info.RetryAfter)
}

func TestLimiter_UnmatchedRoutesShareDefault(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 2, DefaultWindow: time.Minute})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("127.0.0.1", "/templates", "GET")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.1", "/sessions/a/resume", "GET")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.1", "/sessions/b/render", "GET")
	assert.False(t, allowed)
}

func TestLimiter_WhitelistBlacklist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/templates", "GET")
		require.True(t, allowed)
	}
	allowed, _ := limiter.Allow("10.0.0.2", "/templates", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/sessions/x/generate", "POST")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiter_GenerateBudgetIsPerClientNotPerSession(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(20, 30),
	})
	defer limiter.Stop()

	// Burst of 3 is shared across sessions
	for i := 0; i < 3; i++ {
		allowed, info := limiter.Allow("127.0.0.1", fmt.Sprintf("/sessions/s%d/generate", i), "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 20, info.Limit)
	}
	allowed, info := limiter.Allow("127.0.0.1", "/sessions/other/generate", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 3*time.Minute, info.RetryAfter)

	// Another client has its own budget
	allowed, _ = limiter.Allow("127.0.0.2", "/sessions/s0/generate", "POST")
	assert.True(t, allowed)

	// 20 per hour refills one token every three minutes
	clock.Advance(4 * time.Minute)
	allowed, _ = limiter.Allow("127.0.0.1", "/sessions/s0/generate", "POST")
	assert.True(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/templates", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		IdleTTL:       time.Hour,
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/templates", "GET")
	}
	clock.Advance(30 * time.Minute)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/templates", "GET")
	}
	clock.Advance(45 * time.Minute)

	assert.Equal(t, 5, limiter.cleanupBuckets())
	assert.Equal(t, 5, limiter.bucketCount())
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/templates", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 600, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(20, 30)
	configs = append(configs, EndpointConfig{Path: "/admin/", Method: "GET", Limit: 1, Window: time.Minute})

	tests := []struct {
		path, method string
		want         string
	}{
		{"/sessions/abc/generate", "POST", "/sessions/*/generate"},
		{"/sessions/abc/generate/stream", "POST", "/sessions/*/generate/stream"},
		{"/sessions/abc/export", "POST", "/sessions/*/export"},
		{"/sessions", "POST", "/sessions"},
		{"/sessions/abc/resume", "PATCH", "/sessions/*/resume"},
		{"/admin/stats", "GET", "/admin/"},
		{"/health", "GET", "/health"},
		{"/sessions/abc/generate", "GET", ""},
		{"/sessions//generate", "POST", ""},
		{"/sessions/abc/resume", "GET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Path)
		})
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_GENERATE_PER_HOUR", "5")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)

	match := MatchEndpoint("/sessions/x/generate", "POST", cfg.EndpointConfigs)
	require.NotNil(t, match)
	assert.Equal(t, 5, match.Limit)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
