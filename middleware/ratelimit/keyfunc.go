package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

type KeyFunc func(r *http.Request) string

// DefaultKeyFunc identifica o cliente por, nesta ordem: header keyHeader,
// primeiro IP do X-Forwarded-For (só se trustXFF) e host de RemoteAddr.
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		addr := strings.TrimSpace(r.RemoteAddr)
		if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
			return host
		}
		if addr != "" {
			return addr
		}
		return "unknown"
	}
}

// RouteFunc reduz o request a um rótulo de baixa cardinalidade para stats e logs.
type RouteFunc func(r *http.Request) string

// OtherRoute é o rótulo de qualquer path fora da lista conhecida.
const OtherRoute = "other"

// KnownRoutes rotula pelo primeiro segmento do path ("/add-email/a@b.com" vira "/add-email"),
// mas só quando ele está em known. O resto vira OtherRoute: o middleware roda antes do
// roteador, então 404s não podem criar séries novas.
func KnownRoutes(known ...string) RouteFunc {
	set := make(map[string]struct{}, len(known))
	for _, k := range known {
		set[k] = struct{}{}
	}
	return func(r *http.Request) string {
		p := strings.TrimPrefix(r.URL.Path, "/")
		seg, _, _ := strings.Cut(p, "/")
		route := "/" + seg
		if _, ok := set[route]; ok {
			return route
		}
		return OtherRoute
	}
}
