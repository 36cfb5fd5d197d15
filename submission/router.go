package submission

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouteLabels são os primeiros segmentos de path servidos por NewRouter. Middlewares
// que rodam antes do roteamento usam a lista para rotular stats e logs.
var RouteLabels = []string{"/", "/add-email", "/message", "/metrics"}

type RouterOptions struct {
	Handler *Handler
	Logger  *slog.Logger
	// Middlewares rodam antes de qualquer rota, na ordem dada (ex.: concorrência, rate limit).
	Middlewares []func(http.Handler) http.Handler
	// Metrics, se não nil, é servido em GET /metrics.
	Metrics http.Handler
}

func NewRouter(o RouterOptions) http.Handler {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AccessLog(o.Logger))
	r.Use(middleware.Recoverer)
	r.Use(o.Middlewares...)

	r.Get("/", o.Handler.Index)
	r.Get("/add-email/{email}", o.Handler.AddEmail)
	r.Post("/message", o.Handler.SubmitMessage)
	if o.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.Metrics)
	}
	return r
}

// AccessLog loga uma linha por request. Usa o pattern da rota e não o path,
// para não gravar o email de /add-email/{email} no log de acesso.
func AccessLog(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unknown"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
