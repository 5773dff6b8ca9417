package tryon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dresscode-shop/gateway/internal/api"
	"github.com/dresscode-shop/gateway/internal/metrics"
	"github.com/dresscode-shop/gateway/internal/replicate"
)

// Runner submits one try-on job to the image-generation collaborator and
// blocks until it yields an untyped result value.
type Runner interface {
	Run(ctx context.Context, input replicate.TryOnInput) (any, error)
}

type Service struct {
	runner Runner
	cache  *Cache
}

// NewService creates the try-on Service. cache may be nil (no caching).
func NewService(runner Runner, cache *Cache) *Service {
	return &Service{runner: runner, cache: cache}
}

// TryOn runs one garment try-on and returns the normalized image URL.
// Validation and eligibility are the handler's job; by the time a request
// reaches here it is complete and eligible.
func (s *Service) TryOn(ctx context.Context, req TryOnRequest) (string, error) {
	if url, ok := s.cache.Get(ctx, req); ok {
		metrics.TryOnCacheHits.Inc()
		metrics.TryOnJobsTotal.WithLabelValues("cache_hit").Inc()
		return url, nil
	}

	desc := req.Category
	if desc == "" {
		desc = "clothing"
	}

	output, err := s.runner.Run(ctx, replicate.TryOnInput{
		HumanImage:  req.Image,
		GarmentURL:  req.GarmentURL,
		GarmentDesc: desc,
		Crop:        false,
		Seed:        42,
		Steps:       30,
	})
	if err != nil {
		metrics.TryOnJobsTotal.WithLabelValues("upstream_error").Inc()
		return "", api.NewUpstreamError(fmt.Sprintf("try-on failed: %v", err))
	}

	url := ExtractImageURL(output)
	if url == "" {
		// Keep the raw shape server-side for diagnosis; the client only
		// learns that normalization missed.
		slog.Error("could not extract URL from try-on output", "output", fmt.Sprintf("%.500v", output))
		metrics.TryOnJobsTotal.WithLabelValues("no_url").Inc()
		return "", api.NewUpstreamError("no image URL in response")
	}

	s.cache.Set(ctx, req, url)
	metrics.TryOnJobsTotal.WithLabelValues("succeeded").Inc()
	return url, nil
}
