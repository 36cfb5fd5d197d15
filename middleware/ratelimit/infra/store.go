package infra

import (
	"context"
	"sync"
	"time"

	"submission-service/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// Store guarda um token bucket (x/time/rate) por chave, com limpeza das chaves inativas.
type Store struct {
	mu           sync.Mutex
	entries      map[domain.Key]*bucket
	limit        rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucket struct {
	lim *rate.Limiter
	// protegido por Store.mu
	lastSeen time.Time
}

func (b *bucket) Allow() bool { return b.lim.Allow() }

// RetryIn estima quanto falta para o próximo token inteiro.
func (b *bucket) RetryIn() time.Duration {
	tokens := b.lim.Tokens()
	limit := float64(b.lim.Limit())
	if tokens >= 1 || limit <= 0 {
		return 0
	}
	return time.Duration((1 - tokens) / limit * float64(time.Second))
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// NewStore cria o store com taxa sustentada rps e capacidade burst.
func NewStore(rps float64, burst int, opts ...StoreOption) *Store {
	s := &Store{
		entries:      make(map[domain.Key]*bucket),
		limit:        rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RPS() float64 { return float64(s.limit) }
func (s *Store) Burst() int   { return s.burst }

// Get implementa domain.LimiterStore.
func (s *Store) Get(key domain.Key) domain.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.entries[key]; ok {
		b.lastSeen = now
		return b
	}
	b := &bucket{lim: rate.NewLimiter(s.limit, s.burst), lastSeen: now}
	s.entries[key] = b
	return b
}

// Len é o número de chaves em memória.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove chaves sem acesso há mais de idleTTL.
func (s *Store) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, b := range s.entries {
		if b.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor roda Cleanup a cada cleanupEvery até o ctx encerrar.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
