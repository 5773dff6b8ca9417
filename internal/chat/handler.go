package chat

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dresscode-shop/gateway/internal/api"
	"github.com/dresscode-shop/gateway/internal/metrics"
	"github.com/dresscode-shop/gateway/internal/middleware"
	"github.com/dresscode-shop/gateway/internal/ratelimit"
)

type Handler struct {
	svc      *Service
	limiter  *ratelimit.Limiter
	validate *validator.Validate
}

func NewHandler(svc *Service, limiter *ratelimit.Limiter) *Handler {
	return &Handler{
		svc:      svc,
		limiter:  limiter,
		validate: validator.New(),
	}
}

// Chat handles POST /api/v1/chat: quota gate, catalog-grounded upstream
// call, then a plain text token relay.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	clientID := middleware.ClientIP(r)
	res := h.limiter.Allow(clientID)

	setRateLimitHeaders(w, res)

	if !res.Allowed {
		metrics.RateLimitRejections.Inc()
		slog.Info("chat rate limited", "client", clientID, "reset_at", res.ResetAt)
		api.JSONRateLimited(w, "daily chat limit reached", res.ResetAt)
		return
	}

	// Quota is consumed for this attempt whether or not the upstream call
	// succeeds; retrying here would amplify against provider quota.
	stream, err := h.svc.Stream(r.Context(), req.Messages)
	if err != nil {
		slog.Error("opening chat stream", "client", clientID, "error", err)
		api.HandleError(w, api.NewUpstreamError("chat service unavailable"))
		return
	}
	defer stream.Close()

	h.relay(w, r, stream)
}

// relay copies tokens to the caller in arrival order, flushing each one.
// Once the first byte is written the response is committed: a mid-flight
// upstream error can only end the stream, not retract it.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, stream tokenStream) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		slog.Error("response writer does not support flushing")
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	outcome := "completed"
	for {
		tok, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if r.Context().Err() != nil {
				// Client went away; cancellation already propagated upstream
				// through the request context. Not a user-visible error.
				outcome = "canceled"
				break
			}
			slog.Error("chat stream broke mid-flight", "error", err)
			outcome = "upstream_error"
			break
		}

		if _, err := io.WriteString(w, tok); err != nil {
			outcome = "canceled"
			break
		}
		flusher.Flush()
		metrics.ChatTokensRelayed.Inc()
	}

	metrics.ChatStreamsTotal.WithLabelValues(outcome).Inc()
}

// tokenStream lets relay tests substitute a scripted stream.
type tokenStream interface {
	Recv() (string, error)
	Close() error
}

// Quota handles GET /api/v1/chat/quota. Read-only: it never consumes and
// never creates a record for an unseen client.
func (h *Handler) Quota(w http.ResponseWriter, r *http.Request) {
	res := h.limiter.Peek(middleware.ClientIP(r))
	setRateLimitHeaders(w, res)
	api.JSON(w, http.StatusOK, QuotaStatus{
		Remaining: res.Remaining,
		ResetAt:   res.ResetAt.Format(time.RFC3339),
	})
}

func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	w.Header().Set("X-RateLimit-Reset", res.ResetAt.Format(time.RFC3339))
}
