package infra

import (
	"context"
	"testing"
	"time"

	"submission-service/middleware/ratelimit/domain"
)

func TestStore_GetSameKeyReturnsSameLimiter(t *testing.T) {
	s := NewStore(10, 1)

	l1 := s.Get(domain.Key("k"))
	l2 := s.Get(domain.Key("k"))
	if l1 != l2 {
		t.Fatalf("expected same limiter for same key")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
}

func TestStore_LowBurstRejectsSecondImmediateAllow(t *testing.T) {
	s := NewStore(0.02, 1)

	lim := s.Get(domain.Key("k"))
	if !lim.Allow() {
		t.Fatalf("expected first Allow to be true")
	}
	if lim.Allow() {
		t.Fatalf("expected second immediate Allow to be false (burst=1)")
	}
}

func TestStore_BurstThenSustainedRate(t *testing.T) {
	// 1 req/s com burst 2: duas passam, a terceira bloqueia.
	s := NewStore(1, 2)
	lim := s.Get(domain.Key("k"))

	allowed := 0
	for i := 0; i < 5; i++ {
		if lim.Allow() {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("expected burst of 2 to be admitted, got %d", allowed)
	}
}

func TestStore_RetryInEstimatesNextToken(t *testing.T) {
	s := NewStore(0.5, 1) // um token a cada 2s
	lim := s.Get(domain.Key("k"))
	lim.Allow()

	h, ok := lim.(domain.RetryHinter)
	if !ok {
		t.Fatalf("expected limiter to implement RetryHinter")
	}
	d := h.RetryIn()
	if d <= time.Second || d > 2*time.Second {
		t.Fatalf("expected RetryIn in (1s, 2s], got %s", d)
	}
}

func TestStore_CleanupRemovesIdleEntries(t *testing.T) {
	s := NewStore(10, 1, WithIdleTTL(2*time.Millisecond), WithCleanupEvery(0))

	before := s.Get(domain.Key("k"))
	time.Sleep(4 * time.Millisecond)

	s.Cleanup()
	if s.Len() != 0 {
		t.Fatalf("expected idle entry to be removed, got %d entries", s.Len())
	}

	after := s.Get(domain.Key("k"))
	if before == after {
		t.Fatalf("expected limiter to be recreated after cleanup")
	}
}

func TestStore_JanitorStopsWithContext(t *testing.T) {
	s := NewStore(10, 1, WithIdleTTL(time.Millisecond), WithCleanupEvery(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Get(domain.Key("k"))
	s.StartJanitor(ctx)

	deadline := time.Now().Add(500 * time.Millisecond)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected janitor to evict idle key")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
