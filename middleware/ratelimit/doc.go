// Package ratelimit fornece adapters HTTP (net/http) para rate limit e limite de concorrência.
//
// Camadas:
//
//   - domain: contratos e tipos (sem net/http)
//   - application: decisão allow/deny e acquire/timeout (sem net/http)
//   - infra: token bucket, semáforo e stores de estatística
//   - ratelimit (este pacote): middlewares, extração de chave, tradução para status/headers
//
// O SlotPool de infra também serve fora do HTTP: o serviço de submissões usa um
// para limitar chamadas simultâneas ao document store.
//
// Fluxo por request:
//
//  1. Extrai a chave do cliente (header/XFF/IP), ou usa a chave global
//  2. Pede a decisão à camada application
//  3. Registra a decisão nos stats (best-effort), rotulada por KnownRoutes
//  4. Se bloqueado responde 429 (rate) ou 503 (concorrência); senão chama o próximo handler
package ratelimit
