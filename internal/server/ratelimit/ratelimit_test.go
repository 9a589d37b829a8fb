package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fixedClock pins the limiter's notion of now so refill is deterministic
func fixedClock(l *Limiter, start time.Time) *time.Time {
	now := start
	l.now = func() time.Time { return now }
	return &now
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()
	fixedClock(limiter, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/v1/profiles/a", "GET")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
		if info.Remaining != 10-(i+1) {
			t.Errorf("Request %d: expected %d remaining, got %d", i+1, 10-(i+1), info.Remaining)
		}
	}

	allowed, info := limiter.Allow("127.0.0.1", "/v1/profiles/a", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected positive RetryAfter when denied")
	}
	if info.RetryAfter > 6*time.Second+time.Millisecond {
		t.Errorf("Expected RetryAfter of about 6s, got %v", info.RetryAfter)
	}
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  60,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()
	now := fixedClock(limiter, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 60; i++ {
		limiter.Allow("client", "/v1/leads/x", "GET")
	}
	if allowed, _ := limiter.Allow("client", "/v1/leads/x", "GET"); allowed {
		t.Fatal("Expected bucket to be empty")
	}

	*now = now.Add(1100 * time.Millisecond)
	if allowed, _ := limiter.Allow("client", "/v1/leads/x", "GET"); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _ := limiter.Allow("client", "/v1/leads/x", "GET"); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter := NewLimiter(NewConfig(Settings{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     []string{"10.0.0.1", " "},
	}))
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("10.0.0.1", "/v1/profiles/a", "GET"); !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter := NewLimiter(NewConfig(Settings{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Blacklist:     []string{"10.0.0.2"},
	}))
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("10.0.0.2", "/v1/profiles/a", "GET"); allowed {
		t.Error("Expected blacklisted client to be denied")
	}
	if allowed, _ := limiter.Allow("10.0.0.3", "/v1/profiles/a", "GET"); !allowed {
		t.Error("Expected other client to be allowed")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(NewConfig(Settings{Enabled: false, DefaultLimit: 1}))
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := limiter.Allow("client", "/v1/match", "POST"); !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter := NewLimiter(DefaultConfig())
	defer limiter.Stop()
	fixedClock(limiter, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	// Batch has a burst of 5
	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("client", "/v1/match/batch", "POST"); !allowed {
			t.Fatalf("Expected batch request %d to be allowed", i+1)
		}
	}
	allowed, info := limiter.Allow("client", "/v1/match/batch", "POST")
	if allowed {
		t.Error("Expected 6th batch request to be denied")
	}
	if info.Limit != 60 {
		t.Errorf("Expected batch limit 60, got %d", info.Limit)
	}

	// Single match requests use their own bucket
	if allowed, _ := limiter.Allow("client", "/v1/match", "POST"); !allowed {
		t.Error("Expected single match request to be allowed")
	}
}

func TestLimiter_PrefixSharesBucket(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/v1/profiles/", Method: "PUT", Limit: 2, Window: time.Minute},
		},
	})
	defer limiter.Stop()
	fixedClock(limiter, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	limiter.Allow("client", "/v1/profiles/a", "PUT")
	limiter.Allow("client", "/v1/profiles/b", "PUT")
	if allowed, _ := limiter.Allow("client", "/v1/profiles/c", "PUT"); allowed {
		t.Error("Expected profiles under one prefix to share a bucket")
	}
}

func TestLimiter_HealthAndMetricsUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer limiter.Stop()

	for _, path := range []string{"/health", "/metrics"} {
		for i := 0; i < 5; i++ {
			if allowed, _ := limiter.Allow("client", path, "GET"); !allowed {
				t.Errorf("Expected %s request %d to be allowed", path, i+1)
			}
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Hour,
	})
	defer limiter.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if ok, _ := limiter.Allow("client", "/v1/profiles/a", "GET"); ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	// Refill over the test's runtime is negligible at 100 per hour
	if allowed < 100 || allowed > 101 {
		t.Errorf("Expected about 100 allowed requests, got %d", allowed)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()
	now := fixedClock(limiter, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		limiter.Allow(fmt.Sprintf("client-%d", i), "/v1/profiles/a", "GET")
	}
	*now = now.Add(2 * time.Hour)
	limiter.Allow("fresh", "/v1/profiles/a", "GET")

	limiter.cleanupBuckets(now.Add(-bucketIdleTTL))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.buckets) != 1 {
		t.Errorf("Expected 1 bucket after cleanup, got %d", len(limiter.buckets))
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	if limiter.config == nil || !limiter.config.Enabled {
		t.Error("Expected default enabled config")
	}
	if len(limiter.config.EndpointConfigs) == 0 {
		t.Error("Expected default endpoint configs")
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path     string
		method   string
		wantPath string
		wantNil  bool
	}{
		{path: "/v1/match", method: "POST", wantPath: "/v1/match"},
		{path: "/v1/match/batch", method: "POST", wantPath: "/v1/match/batch"},
		{path: "/v1/profiles/abc", method: "PUT", wantPath: "/v1/profiles/"},
		{path: "/v1/matches/123/outcome", method: "POST", wantPath: "/v1/matches/"},
		{path: "/v1/profiles/abc", method: "GET", wantNil: true},
		{path: "/health", method: "GET", wantPath: "/health"},
		{path: "/unknown", method: "POST", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Expected no match, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected a match")
			}
			if got.Path != tt.wantPath {
				t.Errorf("Expected path %s, got %s", tt.wantPath, got.Path)
			}
		})
	}
}
