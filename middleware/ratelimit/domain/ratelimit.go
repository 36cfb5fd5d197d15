package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

type Key string

// GlobalKey é a chave única usada quando o limite é do processo inteiro
// (um só bucket para todos os clientes).
const GlobalKey Key = "*"

// Limiter decide se uma ação é permitida agora (token bucket na infra).
type Limiter interface {
	Allow() bool
}

// RetryHinter é opcional: um Limiter que sabe estimar quando o próximo token chega.
type RetryHinter interface {
	RetryIn() time.Duration
}

// LimiterStore obtém um limiter por chave (ex: IP, API key, GlobalKey).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Key     Key
	Allowed bool
	// RetryAfter só é preenchido quando bloqueado.
	RetryAfter time.Duration
}
