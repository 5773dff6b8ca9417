package middleware

import (
	"net"
	"net/http"
)

// UnknownClient is the shared bucket for requests whose network origin
// cannot be resolved. All such callers draw from one quota.
const UnknownClient = "unknown"

// ClientIP resolves the client identifier from the request's network
// origin: forwarded-address header first, then the direct peer address,
// then the unknown sentinel.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For first (trusted reverse proxy)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if r.RemoteAddr == "" {
		return UnknownClient
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
