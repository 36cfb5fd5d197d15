package infra

import (
	"context"

	"submission-service/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStats conta decisões em ratelimit_decisions_total{result,route}.
// A chave do cliente não vira label.
type PrometheusStats struct {
	decisions *prometheus.CounterVec
}

// NewPrometheusStats registra o contador em reg (ex.: prometheus.DefaultRegisterer).
func NewPrometheusStats(reg prometheus.Registerer) (*PrometheusStats, error) {
	c := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_decisions_total",
			Help: "Rate limit decisions by result and route.",
		},
		[]string{"result", "route"},
	)
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return &PrometheusStats{decisions: c}, nil
}

func (s *PrometheusStats) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Route
	if route == "" {
		route = "unknown"
	}
	s.decisions.WithLabelValues(resultLabel(ev.Allowed), route).Inc()
	return nil
}

// Counter expõe o contador para testes.
func (s *PrometheusStats) Counter(allowed bool, route string) prometheus.Counter {
	return s.decisions.WithLabelValues(resultLabel(allowed), route)
}

// RegisterSlotGauge expõe as vagas em uso de pool como gauge, lido a cada scrape.
func RegisterSlotGauge(reg prometheus.Registerer, name, help string, pool domain.SlotPool) error {
	return reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: name, Help: help},
		func() float64 { return float64(pool.InUse()) },
	))
}
