package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão do rate limit.
//
// Route deve ser de baixa cardinalidade: "/add-email" e não "/add-email/foo@bar.com"
// (o email no path explodiria o número de séries e vazaria PII para Redis/Prometheus).
type StatsEvent struct {
	Key     Key
	Allowed bool

	Method string
	Route  string

	At time.Time
}

// StatsStore persiste estatísticas do rate limit.
// O middleware trata erro como best-effort: loga e segue com o request.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
