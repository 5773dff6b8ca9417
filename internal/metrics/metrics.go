package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dresscode_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dresscode_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ChatStreamsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dresscode_chat_streams_total",
			Help: "Chat streams by terminal outcome.",
		},
		[]string{"outcome"},
	)

	ChatTokensRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dresscode_chat_tokens_relayed_total",
			Help: "Total tokens relayed to chat clients.",
		},
	)

	RateLimitRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dresscode_ratelimit_rejections_total",
			Help: "Requests rejected by the daily quota.",
		},
	)

	TryOnJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dresscode_tryon_jobs_total",
			Help: "Try-on jobs by outcome.",
		},
		[]string{"outcome"},
	)

	TryOnCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dresscode_tryon_cache_hits_total",
			Help: "Try-on requests served from the result cache.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ChatStreamsTotal,
		ChatTokensRelayed,
		RateLimitRejections,
		TryOnJobsTotal,
		TryOnCacheHits,
	)
}
