package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"submission-service/logging"
	rlinfra "submission-service/middleware/ratelimit/infra"
	"submission-service/submission/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config {
	return config{
		ListenAddr:     "127.0.0.1:0",
		MongoDB:        "DEV",
		StoreTimeout:   time.Second,
		RateEnabled:    true,
		RateRPS:        1,
		RateBurst:      2,
		ConcurrencyMax: 10,
	}
}

func serve(h http.Handler, method, target, body, remote string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestNewHandler_RateLimitsAcrossRoutesPerClient(t *testing.T) {
	cfg := testConfig()
	gw := infra.NewMemoryGateway()
	reg := prometheus.NewRegistry()
	prom, err := rlinfra.NewPrometheusStats(reg)
	require.NoError(t, err)

	h := newHandler(cfg, handlerDeps{Gateway: gw, Limiter: rlinfra.NewStore(cfg.RateRPS, cfg.RateBurst), Stats: prom}, logging.Discard())

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/add-email/foo@bar.com", "", "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/message", `{"email":"foo@bar.com","subject":"s","content":"c"}`, "10.0.0.1:1").Code)

	w := serve(h, http.MethodGet, "/add-email/other@bar.com", "", "10.0.0.1:1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// outro cliente tem seu próprio bucket
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/", "", "10.0.0.2:1").Code)

	assert.Len(t, gw.Emails(), 1)
	assert.Len(t, gw.Messages(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.Counter(false, "/add-email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.Counter(true, "/message")))
}

func TestNewHandler_GlobalBucket(t *testing.T) {
	cfg := testConfig()
	cfg.RateGlobal = true
	cfg.RateBurst = 1
	h := newHandler(cfg, handlerDeps{Gateway: infra.NewMemoryGateway(), Limiter: rlinfra.NewStore(cfg.RateRPS, cfg.RateBurst)}, logging.Discard())

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/", "", "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, http.MethodGet, "/", "", "10.0.0.2:1").Code)
}

func TestNewHandler_RateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateEnabled = false
	h := newHandler(cfg, handlerDeps{Gateway: infra.NewMemoryGateway(), Limiter: rlinfra.NewStore(cfg.RateRPS, cfg.RateBurst)}, logging.Discard())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/", "", "10.0.0.1:1").Code)
	}
}

func TestNewHandler_ServesMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.RateBurst = 10
	reg := prometheus.NewRegistry()
	prom, err := rlinfra.NewPrometheusStats(reg)
	require.NoError(t, err)
	metrics := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	h := newHandler(cfg, handlerDeps{
		Gateway: infra.NewMemoryGateway(),
		Limiter: rlinfra.NewStore(cfg.RateRPS, cfg.RateBurst),
		Stats:   prom,
		Metrics: metrics,
	}, logging.Discard())

	serve(h, http.MethodGet, "/", "", "10.0.0.1:1")
	w := serve(h, http.MethodGet, "/metrics", "", "10.0.0.1:1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ratelimit_decisions_total{result="allowed",route="/"} 1`)
}

func TestNewHandler_UnknownPathsCollapseIntoOneSeries(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 1000
	cfg.RateBurst = 1000
	reg := prometheus.NewRegistry()
	prom, err := rlinfra.NewPrometheusStats(reg)
	require.NoError(t, err)

	h := newHandler(cfg, handlerDeps{
		Gateway: infra.NewMemoryGateway(),
		Limiter: rlinfra.NewStore(cfg.RateRPS, cfg.RateBurst),
		Stats:   prom,
	}, logging.Discard())

	for i := 0; i < 500; i++ {
		assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, fmt.Sprintf("/junk-%d", i), "", "10.0.0.1:1").Code)
	}
	serve(h, http.MethodGet, "/add-email/foo@bar.com", "", "10.0.0.1:1")
	serve(h, http.MethodGet, "/add-email/baz@bar.com", "", "10.0.0.1:1")

	n, err := testutil.GatherAndCount(reg, "ratelimit_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 500.0, testutil.ToFloat64(prom.Counter(true, "other")))
	assert.Equal(t, 2.0, testutil.ToFloat64(prom.Counter(true, "/add-email")))
}

func TestNewHandler_StoreSlotsBoundStoreCalls(t *testing.T) {
	cfg := testConfig()
	cfg.StoreTimeout = 20 * time.Millisecond
	gw := infra.NewMemoryGateway()
	slots := rlinfra.NewChanPool(1)

	h := newHandler(cfg, handlerDeps{
		Gateway:    gw,
		Limiter:    rlinfra.NewStore(cfg.RateRPS, cfg.RateBurst),
		StoreSlots: slots,
	}, logging.Discard())

	held, ok := slots.Acquire(context.Background())
	require.True(t, ok)
	w := serve(h, http.MethodPost, "/message", `{"email":"foo@bar.com","subject":"s","content":"c"}`, "10.0.0.1:1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "timeout", w.Body.String())
	assert.Empty(t, gw.Messages())

	held()
	w = serve(h, http.MethodPost, "/message", `{"email":"foo@bar.com","subject":"s","content":"c"}`, "10.0.0.2:1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, gw.Messages(), 1)
	assert.Zero(t, slots.InUse())
}
