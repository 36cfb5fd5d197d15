package ratelimit

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"submission-service/middleware/ratelimit/application"
	"submission-service/middleware/ratelimit/domain"
	"submission-service/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	// Max <= 0 desliga o limite. Ignorado quando Pool vem preenchido.
	Max int
	// Pool permite compartilhar o semáforo (ex.: para expor InUse como métrica).
	Pool           domain.SlotPool
	RejectStatus   int
	AcquireTimeout time.Duration
	// RouteFn rotula o log; o path cru de /add-email carrega o email.
	RouteFn RouteFunc
	Logger  *slog.Logger
}

// ConcurrencyMiddleware limita quantos requests ficam em andamento ao mesmo tempo.
//
// Sem vaga dentro do AcquireTimeout responde RejectStatus (503 por padrão).
// Se o cliente desistiu antes, não há para quem responder: só registra e sai.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Pool == nil {
		if opts.Max <= 0 {
			return func(next http.Handler) http.Handler { return next }
		}
		opts.Pool = infra.NewChanPool(opts.Max)
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.RouteFn == nil {
		opts.RouteFn = KnownRoutes()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	svc := application.ConcurrencyService{
		Pool:           opts.Pool,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				route := opts.RouteFn(r)
				if !errors.Is(err, domain.ErrSaturated) {
					opts.Logger.Debug("client gave up waiting for a slot", "route", route, "error", err)
					return
				}
				opts.Logger.Warn("no concurrency slot available",
					"max", opts.Pool.Cap(), "in_use", opts.Pool.InUse(), "route", route)
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
