package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresscode-shop/gateway/internal/catalog"
	"github.com/dresscode-shop/gateway/internal/config"
	"github.com/dresscode-shop/gateway/internal/llm"
	"github.com/dresscode-shop/gateway/internal/ratelimit"
)

const catalogBody = `{"result":[{"_id":"p1","name":"Linen Shirt","slug":"linen-shirt","price":89.5,"description":"","categories":["shirt"],"colors":["white"]}]}`

type fixture struct {
	handler      *Handler
	limiter      *ratelimit.Limiter
	llmCalls     *int
	catalogCalls *int
}

// newFixture wires a handler against fake catalog and chat upstreams.
func newFixture(t *testing.T, limit int, catalogStatus int, tokens []string) *fixture {
	t.Helper()

	catalogCalls := 0
	catalogSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		catalogCalls++
		if catalogStatus != http.StatusOK {
			w.WriteHeader(catalogStatus)
			return
		}
		io.WriteString(w, catalogBody)
	}))
	t.Cleanup(catalogSrv.Close)

	llmCalls := 0
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		llmCalls++

		var req struct {
			Messages []llm.Message `json:"messages"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && assert.NotEmpty(t, req.Messages) {
			assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
			assert.Contains(t, req.Messages[0].Content, "Linen Shirt")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, tok := range tokens {
			fmt.Fprintf(w, `data: {"choices":[{"delta":{"content":%q}}]}`+"\n\n", tok)
		}
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(llmSrv.Close)

	catalogClient := catalog.NewClient(config.CatalogConfig{
		BaseURL: catalogSrv.URL, Dataset: "production", APIVersion: "2024-01-01",
		Timeout: time.Second,
	})
	llmClient := llm.NewClient(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4", BaseURL: llmSrv.URL})
	limiter := ratelimit.New(limit)

	return &fixture{
		handler:      NewHandler(NewService(catalogClient, llmClient), limiter),
		limiter:      limiter,
		llmCalls:     &llmCalls,
		catalogCalls: &catalogCalls,
	}
}

func chatReq(body string) *http.Request {
	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.5:40000"
	return req
}

func TestChat_StreamsTokensWithQuotaHeaders(t *testing.T) {
	fx := newFixture(t, 20, http.StatusOK, []string{"Hello", " there"})

	rec := httptest.NewRecorder()
	fx.handler.Chat(rec, chatReq(`{"messages":[{"role":"user","content":"hi"}]}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello there", rec.Body.String())
	assert.Equal(t, "19", rec.Header().Get("X-RateLimit-Remaining"))

	reset, err := time.Parse(time.RFC3339, rec.Header().Get("X-RateLimit-Reset"))
	require.NoError(t, err)
	assert.True(t, reset.After(time.Now()))
	assert.Equal(t, 1, *fx.catalogCalls)
}

func TestChat_RateLimitedReturns429WithoutUpstreamCall(t *testing.T) {
	fx := newFixture(t, 1, http.StatusOK, []string{"ok"})

	rec := httptest.NewRecorder()
	fx.handler.Chat(rec, chatReq(`{"messages":[{"role":"user","content":"hi"}]}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	fx.handler.Chat(rec, chatReq(`{"messages":[{"role":"user","content":"hi"}]}`))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var body struct {
		Error   string `json:"error"`
		ResetAt string `json:"resetAt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "limit")
	_, err := time.Parse(time.RFC3339, body.ResetAt)
	require.NoError(t, err)

	assert.Equal(t, 1, *fx.llmCalls)
	assert.Equal(t, 1, *fx.catalogCalls)
}

func TestChat_CatalogFailureIs500AndConsumesQuota(t *testing.T) {
	fx := newFixture(t, 20, http.StatusNotFound, nil)

	rec := httptest.NewRecorder()
	fx.handler.Chat(rec, chatReq(`{"messages":[{"role":"user","content":"hi"}]}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "chat service unavailable")
	assert.Equal(t, 0, *fx.llmCalls)

	// No refund: the attempt consumed one slot.
	assert.Equal(t, 19, fx.limiter.Peek("203.0.113.5").Remaining)
}

func TestChat_MalformedBodyRejectedBeforeQuota(t *testing.T) {
	fx := newFixture(t, 20, http.StatusOK, nil)

	rec := httptest.NewRecorder()
	fx.handler.Chat(rec, chatReq(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	fx.handler.Chat(rec, chatReq(`{"messages":[]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	fx.handler.Chat(rec, chatReq(`{"messages":[{"role":"wizard","content":"hi"}]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 20, fx.limiter.Peek("203.0.113.5").Remaining)
	assert.Equal(t, 0, *fx.catalogCalls)
}

func TestQuota_PeekNeverMutates(t *testing.T) {
	fx := newFixture(t, 20, http.StatusOK, []string{"ok"})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/chat/quota", nil)
		req.RemoteAddr = "203.0.113.5:40000"
		fx.handler.Quota(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body QuotaStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 20, body.Remaining)
		_, err := time.Parse(time.RFC3339, body.ResetAt)
		require.NoError(t, err)
	}
}

type scriptedStream struct {
	tokens []string
	err    error
	pos    int
}

func (s *scriptedStream) Recv() (string, error) {
	if s.pos < len(s.tokens) {
		s.pos++
		return s.tokens[s.pos-1], nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error { return nil }

func TestRelay_MidStreamErrorKeepsPartialOutput(t *testing.T) {
	fx := newFixture(t, 20, http.StatusOK, nil)

	rec := httptest.NewRecorder()
	stream := &scriptedStream{
		tokens: []string{"partial ", "answer"},
		err:    errors.New("upstream reset"),
	}
	fx.handler.relay(rec, chatReq(`{}`), stream)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial answer", rec.Body.String())
}
