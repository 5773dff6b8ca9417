package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	OpenAI    OpenAIConfig
	Replicate ReplicateConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// CatalogConfig points at the Sanity-compatible catalog query API.
type CatalogConfig struct {
	BaseURL    string
	Dataset    string
	APIVersion string
	Token      string
	Timeout    time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type ReplicateConfig struct {
	Token   string
	Version string
	BaseURL string
	// Timeout bounds the whole prediction, submission plus polling.
	Timeout time.Duration
}

type RateLimitConfig struct {
	DailyLimit int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether a Redis host was configured at all. The try-on
// result cache is optional and the gateway runs without it.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		Catalog: CatalogConfig{
			BaseURL:    k.String("catalog.base.url"),
			Dataset:    k.String("catalog.dataset"),
			APIVersion: k.String("catalog.api.version"),
			Token:      k.String("catalog.token"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  k.String("openai.api.key"),
			Model:   k.String("openai.model"),
			BaseURL: k.String("openai.base.url"),
		},
		Replicate: ReplicateConfig{
			Token:   k.String("replicate.api.token"),
			Version: k.String("replicate.model.version"),
			BaseURL: k.String("replicate.base.url"),
		},
		RateLimit: RateLimitConfig{
			DailyLimit: k.Int("ratelimit.daily.limit"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(k.String("cors.allowed.origins")),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Catalog.Dataset == "" {
		cfg.Catalog.Dataset = "production"
	}
	if cfg.Catalog.APIVersion == "" {
		cfg.Catalog.APIVersion = "2024-01-01"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4"
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com"
	}
	if cfg.Replicate.BaseURL == "" {
		cfg.Replicate.BaseURL = "https://api.replicate.com"
	}
	if cfg.Replicate.Version == "" {
		cfg.Replicate.Version = "cuuupid/idm-vton:0513734a452173b8173e907e3a59d19a36266e55b48528559432bd21c7d7e985"
	}
	if cfg.RateLimit.DailyLimit == 0 {
		cfg.RateLimit.DailyLimit = 20
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	cfg.Catalog.Timeout, err = parseDuration(k, "catalog.timeout", "10s")
	if err != nil {
		return nil, err
	}
	cfg.OpenAI.Timeout, err = parseDuration(k, "openai.timeout", "120s")
	if err != nil {
		return nil, err
	}
	cfg.Replicate.Timeout, err = parseDuration(k, "replicate.timeout", "120s")
	if err != nil {
		return nil, err
	}
	cfg.Redis.CacheTTL, err = parseDuration(k, "redis.cache.ttl", "24h")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(k *koanf.Koanf, key, fallback string) (time.Duration, error) {
	s := k.String(key)
	if s == "" {
		s = fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
