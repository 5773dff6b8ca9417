package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dresscode-shop/gateway/internal/api"
	"github.com/dresscode-shop/gateway/internal/catalog"
	"github.com/dresscode-shop/gateway/internal/chat"
	"github.com/dresscode-shop/gateway/internal/config"
	"github.com/dresscode-shop/gateway/internal/llm"
	"github.com/dresscode-shop/gateway/internal/ratelimit"
	iredis "github.com/dresscode-shop/gateway/internal/redis"
	"github.com/dresscode-shop/gateway/internal/replicate"
	"github.com/dresscode-shop/gateway/internal/server"
	"github.com/dresscode-shop/gateway/internal/tryon"

	redislib "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("validating config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Redis (optional try-on result cache)
	var redisClient *redislib.Client
	if cfg.Redis.Enabled() {
		redisClient, err = iredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			// The cache is an optimization; start without it.
			slog.Warn("redis unavailable, try-on cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Quota
	limiter := ratelimit.New(cfg.RateLimit.DailyLimit)

	// Chat
	catalogClient := catalog.NewClient(cfg.Catalog)
	llmClient := llm.NewClient(cfg.OpenAI)
	chatHandler := chat.NewHandler(chat.NewService(catalogClient, llmClient), limiter)

	// Try-on
	var cache *tryon.Cache
	if redisClient != nil {
		cache = tryon.NewCache(redisClient, cfg.Redis.CacheTTL)
	}
	runner := replicate.NewClient(cfg.Replicate)
	tryonHandler := tryon.NewHandler(tryon.NewService(runner, cache))

	// Router
	router := api.NewRouter(redisClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
	}, api.HandlerSet{
		Chat:      chatHandler.Chat,
		ChatQuota: chatHandler.Quota,
		TryOn:     tryonHandler.TryOn,
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
