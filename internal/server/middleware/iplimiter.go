package middleware

import (
	"log/slog"
	"net/http"
	"sync"
)

// NewIPLimiter caps concurrent requests per client IP. The WebSocket upgrade
// handler blocks for the lifetime of the connection, so for /ws this bounds
// live connections per address. Per-user limiting is not needed here: the
// registry's single-occupancy rule already evicts duplicates.
func NewIPLimiter(logger *slog.Logger, maxPerIP int) Middleware {
	var mu sync.Mutex
	active := make(map[string]int)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxPerIP <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			reqMeta, ok := ReqMetadataFrom(r.Context())
			if !ok {
				logger.Error("IP limiter could not find request metadata in context. Check middleware order.")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			mu.Lock()
			if active[reqMeta.IP] >= maxPerIP {
				mu.Unlock()
				logger.Warn("connection limit reached for IP", slog.String("ip", reqMeta.IP))
				http.Error(w, "Too Many Active Connections", http.StatusTooManyRequests)
				return
			}
			active[reqMeta.IP]++
			mu.Unlock()

			defer func() {
				mu.Lock()
				active[reqMeta.IP]--
				if active[reqMeta.IP] <= 0 {
					delete(active, reqMeta.IP)
				}
				mu.Unlock()
			}()

			next.ServeHTTP(w, r)
		})
	}
}
