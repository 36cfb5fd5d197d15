// Package infra contém implementações concretas para os contratos do pacote domain.
//
// Exemplos:
//   - Store: token bucket por chave usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
//   - PrometheusStats, RedisStats: contadores de decisões do rate limit
package infra
