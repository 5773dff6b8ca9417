package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	mw "github.com/dresscode-shop/gateway/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Chat handlers
	Chat      http.HandlerFunc
	ChatQuota http.HandlerFunc

	// Try-on handler
	TryOn http.HandlerFunc
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
}

func NewRouter(redisClient *redis.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — the AI collaborators are not probed (no cheap
	// health surface, and a degraded upstream already maps to 500 per
	// request); only the optional cache is checked.
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status": "healthy",
			"cache":  "healthy",
		}
		status := http.StatusOK

		if redisClient == nil {
			health["cache"] = "not configured"
		} else if err := redisClient.Ping(r.Context()).Err(); err != nil {
			// Cache is fail-open, so a dead Redis degrades but does not
			// fail readiness.
			health["cache"] = "unhealthy"
			health["status"] = "degraded"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", h.Chat)
			r.Get("/quota", h.ChatQuota)
		})
		r.Post("/try-on", h.TryOn)
	})

	return r
}
