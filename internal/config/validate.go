package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if c.OpenAI.APIKey == "" {
		errs = append(errs, "OPENAI_API_KEY is required")
	}
	if c.Replicate.Token == "" {
		errs = append(errs, "REPLICATE_API_TOKEN is required")
	}
	if c.Catalog.BaseURL == "" {
		errs = append(errs, "CATALOG_BASE_URL is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.Redis.Enabled() && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	if c.RateLimit.DailyLimit < 1 {
		errs = append(errs, fmt.Sprintf("RATELIMIT_DAILY_LIMIT must be positive, got %d", c.RateLimit.DailyLimit))
	}

	// Catalog token: warn only, public datasets are readable without one
	if c.Catalog.Token == "" {
		slog.Warn("CATALOG_TOKEN is empty — catalog queries run unauthenticated")
	}
	if !c.Redis.Enabled() {
		slog.Warn("REDIS_HOST is empty — try-on result cache disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
