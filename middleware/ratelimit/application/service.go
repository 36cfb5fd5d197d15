package application

import (
	"time"

	"submission-service/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store domain.LimiterStore
	// Global ignora a chave do cliente e usa um único bucket.
	Global bool
	// RetryAfter fixo. Se 0, usa a estimativa do limiter (RetryHinter), com mínimo de 1s.
	RetryAfter time.Duration
}

func (s Service) Decide(key domain.Key) domain.Decision {
	if s.Global {
		key = domain.GlobalKey
	}
	if s.Store == nil {
		return domain.Decision{Key: key, Allowed: true}
	}

	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Key: key, Allowed: true}
	}
	return domain.Decision{Key: key, Allowed: false, RetryAfter: s.retryAfter(lim)}
}

func (s Service) retryAfter(lim domain.Limiter) time.Duration {
	if s.RetryAfter > 0 {
		return s.RetryAfter
	}
	if h, ok := lim.(domain.RetryHinter); ok {
		if d := h.RetryIn(); d > time.Second {
			return d
		}
	}
	return time.Second
}
