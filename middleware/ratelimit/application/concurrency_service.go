package application

import (
	"context"
	"time"

	"submission-service/middleware/ratelimit/domain"
)

// ConcurrencyService aplica a regra de aquisição de vagas com timeout,
// sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
//
// Com AcquireTimeout <= 0 espera até o ctx do chamador encerrar. O erro distingue
// quem desistiu: domain.ErrSaturated quando o AcquireTimeout venceu, ctx.Err() quando
// foi o chamador. Com erro, nenhuma vaga foi adquirida e release é nil.
func (s ConcurrencyService) Acquire(ctx context.Context) (release func(), err error) {
	if s.Pool == nil {
		return func() {}, nil
	}
	wait := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		wait, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}
	if rel, ok := s.Pool.Acquire(wait); ok {
		return rel, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, domain.ErrSaturated
}
