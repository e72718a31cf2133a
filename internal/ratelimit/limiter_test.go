package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(context.Background(), "10.0.0.1")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, err := limiter.Allow(context.Background(), "10.0.0.1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("request over the limit should be rejected")
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)

	if ok, _ := limiter.Allow(context.Background(), "10.0.0.1"); !ok {
		t.Fatal("first key should be allowed")
	}
	if ok, _ := limiter.Allow(context.Background(), "10.0.0.2"); !ok {
		t.Fatal("second key should be allowed")
	}
	if ok, _ := limiter.Allow(context.Background(), "10.0.0.1"); ok {
		t.Fatal("first key should be over the limit")
	}
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	limiter := &memoryLimiter{
		counts:    make(map[string]int),
		limit:     1,
		windowDur: time.Minute,
	}

	current := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	if ok, _ := limiter.Allow(context.Background(), "10.0.0.1"); !ok {
		t.Fatal("first request should be allowed")
	}
	if ok, _ := limiter.Allow(context.Background(), "10.0.0.1"); ok {
		t.Fatal("second request in the same window should be rejected")
	}

	// Следующее окно обнуляет счётчики.
	current = current.Add(2 * time.Minute)
	if ok, _ := limiter.Allow(context.Background(), "10.0.0.1"); !ok {
		t.Fatal("request in a new window should be allowed")
	}
}
