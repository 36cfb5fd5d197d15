package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"submission-service/logging"
	"submission-service/middleware/ratelimit"
	rldomain "submission-service/middleware/ratelimit/domain"
	rlinfra "submission-service/middleware/ratelimit/infra"
	"submission-service/submission"
	"submission-service/submission/application"
	"submission-service/submission/domain"
	"submission-service/submission/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := loadConfig(".env")
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gw, closeStore, err := openMongo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	store := rlinfra.NewStore(cfg.RateRPS, cfg.RateBurst)
	store.StartJanitor(ctx)

	d := handlerDeps{Gateway: gw, Limiter: store}
	if cfg.ConcurrencyMax > 0 {
		d.RequestSlots = rlinfra.NewChanPool(cfg.ConcurrencyMax)
	}
	var storeSlots rldomain.SlotPool
	if cfg.StoreConcurrencyMax > 0 {
		storeSlots = rlinfra.NewChanPool(cfg.StoreConcurrencyMax)
		d.StoreSlots = storeSlots
	}

	var stats rlinfra.MultiStats
	if cfg.MetricsEnabled {
		reg := prometheus.DefaultRegisterer
		prom, err := rlinfra.NewPrometheusStats(reg)
		if err != nil {
			return err
		}
		stats = append(stats, prom)
		if err := registerSlotGauges(reg, d.RequestSlots, storeSlots); err != nil {
			return err
		}
		d.Metrics = promhttp.Handler()
	}
	if cfg.RateStatsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RateStatsRedisAddr,
			Password: cfg.RateStatsRedisPassword,
			DB:       cfg.RateStatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			return errors.Join(errors.New("redis stats ping failed"), err)
		}

		stats = append(stats, rlinfra.NewRedisStats(
			rdb,
			rlinfra.WithStatsPrefix(cfg.RateStatsPrefix),
			rlinfra.WithStatsTTL(cfg.RateStatsTTL),
			rlinfra.WithStatsBucket(cfg.RateStatsBucket),
			rlinfra.WithStatsTrackKeys(cfg.RateStatsTrackKeys),
		))
	}
	if len(stats) > 0 {
		d.Stats = stats
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newHandler(cfg, d, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening", "addr", cfg.ListenAddr, "database", cfg.MongoDB)
	logger.Info("rate limit", "enabled", cfg.RateEnabled, "rps", cfg.RateRPS, "burst", cfg.RateBurst,
		"global", cfg.RateGlobal, "keyHeader", cfg.RateKeyHeader, "trustXFF", cfg.TrustXFF)
	logger.Info("rate limit stats", "prometheus", cfg.MetricsEnabled, "redis", cfg.RateStatsEnabled,
		"redisAddr", cfg.RateStatsRedisAddr, "bucket", cfg.RateStatsBucket)
	logger.Info("concurrency", "max", cfg.ConcurrencyMax, "acquireTimeout", cfg.ConcurrencyTimeout,
		"storeMax", cfg.StoreConcurrencyMax)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openMongo conecta, confere o servidor e garante o índice único de emails.
func openMongo(ctx context.Context, cfg config, logger *slog.Logger) (*infra.MongoGateway, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := infra.ConnectMongo(connectCtx, infra.MongoOptions{
		URL:      cfg.MongoURL,
		Username: cfg.MongoUser,
		Password: cfg.MongoPassword,
		AppName:  "submission-service",
	})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}

	gw := infra.NewMongoGateway(client, cfg.MongoDB)
	if err := gw.Ping(connectCtx); err != nil {
		closeFn()
		return nil, nil, err
	}
	if err := gw.EnsureIndexes(connectCtx); err != nil {
		closeFn()
		return nil, nil, err
	}
	logger.Info("connected to mongo", "database", cfg.MongoDB)
	return gw, closeFn, nil
}

// registerSlotGauges expõe a ocupação dos pools que existirem.
func registerSlotGauges(reg prometheus.Registerer, requests, store rldomain.SlotPool) error {
	if requests != nil {
		if err := rlinfra.RegisterSlotGauge(reg, "http_inflight_requests",
			"Requests holding a concurrency slot.", requests); err != nil {
			return err
		}
	}
	if store != nil {
		if err := rlinfra.RegisterSlotGauge(reg, "store_inflight_calls",
			"Document store calls holding a slot.", store); err != nil {
			return err
		}
	}
	return nil
}

// handlerDeps são as peças montadas por run; campos nil desligam o recurso.
type handlerDeps struct {
	Gateway      domain.Gateway
	Limiter      rldomain.LimiterStore
	Stats        rldomain.StatsStore
	RequestSlots rldomain.SlotPool
	StoreSlots   domain.StoreSlots
	Metrics      http.Handler
}

// newHandler monta a cadeia: request id, access log, recoverer, concorrência, rate limit, rotas.
func newHandler(cfg config, d handlerDeps, logger *slog.Logger) http.Handler {
	svc := application.Service{
		Gateway:      d.Gateway,
		Validator:    application.NewValidator(),
		StoreTimeout: cfg.StoreTimeout,
		Slots:        d.StoreSlots,
	}
	routeFn := ratelimit.KnownRoutes(submission.RouteLabels...)

	mws := []func(http.Handler) http.Handler{
		ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Max:            cfg.ConcurrencyMax,
			Pool:           d.RequestSlots,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.ConcurrencyTimeout,
			RouteFn:        routeFn,
			Logger:         logger,
		}),
	}
	if cfg.RateEnabled {
		mws = append(mws, ratelimit.Middleware(ratelimit.Options{
			Store:               d.Limiter,
			Stats:               d.Stats,
			Global:              cfg.RateGlobal,
			KeyHeader:           cfg.RateKeyHeader,
			TrustXForwardedFor:  cfg.TrustXFF,
			RouteFn:             routeFn,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.RetryAfter,
			AddRateLimitHeaders: cfg.AddRateLimitHeaders,
			Logger:              logger,
		}))
	}

	return submission.NewRouter(submission.RouterOptions{
		Handler:     submission.NewHandler(svc, logger),
		Logger:      logger,
		Middlewares: mws,
		Metrics:     d.Metrics,
	})
}
