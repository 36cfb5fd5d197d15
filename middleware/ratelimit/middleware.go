package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"submission-service/middleware/ratelimit/application"
	"submission-service/middleware/ratelimit/domain"
)

type Options struct {
	Store domain.LimiterStore
	Stats domain.StatsStore
	// Global usa um único bucket para todos os clientes; KeyFn é ignorada na decisão.
	Global             bool
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool
	// RouteFn rotula stats e logs. Se nil, tudo vira OtherRoute.
	RouteFn             RouteFunc
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Logger              *slog.Logger
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// Middleware aplica o token bucket antes de qualquer handler.
// Request bloqueado não chega ao próximo handler.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.RouteFn == nil {
		opts.RouteFn = KnownRoutes()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	svc := application.Service{
		Store:      opts.Store,
		Global:     opts.Global,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dec := svc.Decide(domain.Key(opts.KeyFn(r)))
			route := opts.RouteFn(r)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", string(dec.Key))
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", strconv.FormatFloat(ri.RPS(), 'f', -1, 64))
					w.Header().Set("X-RateLimit-Burst", strconv.Itoa(ri.Burst()))
				}
			}

			if opts.Stats != nil {
				ev := domain.StatsEvent{
					Key:     dec.Key,
					Allowed: dec.Allowed,
					Method:  r.Method,
					Route:   route,
					At:      time.Now(),
				}
				if err := opts.Stats.Record(r.Context(), ev); err != nil {
					opts.Logger.Warn("rate limit stats record failed", "route", route, "error", err)
				}
			}

			if !dec.Allowed {
				opts.Logger.Debug("rate limited", "key", string(dec.Key), "method", r.Method, "route", route)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(dec.RetryAfter.Seconds()))))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
