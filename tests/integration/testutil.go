//go:build integration

package integration

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dresscode-shop/gateway/internal/api"
	"github.com/dresscode-shop/gateway/internal/catalog"
	"github.com/dresscode-shop/gateway/internal/chat"
	"github.com/dresscode-shop/gateway/internal/config"
	"github.com/dresscode-shop/gateway/internal/llm"
	"github.com/dresscode-shop/gateway/internal/ratelimit"
	"github.com/dresscode-shop/gateway/internal/replicate"
	"github.com/dresscode-shop/gateway/internal/tryon"
)

const catalogBody = `{"result":[{"_id":"p1","name":"Linen Shirt","slug":"linen-shirt","price":89.5,"description":"A crisp linen shirt","categories":["shirt"],"colors":["white"]}]}`

// TestEnv stands up the full gateway against fake collaborators.
type TestEnv struct {
	Server  *httptest.Server
	Limiter *ratelimit.Limiter

	// Atomic call counters for the fake collaborators.
	CatalogCalls   atomic.Int64
	ChatCalls      atomic.Int64
	ReplicateCalls atomic.Int64

	// ReplicateResponse is the JSON body the fake prediction API returns.
	ReplicateResponse atomic.Value // string
}

func SetupTestEnv(t *testing.T, dailyLimit int) *TestEnv {
	t.Helper()

	env := &TestEnv{}
	env.ReplicateResponse.Store(`{"id":"pred-1","status":"succeeded","output":["https://replicate.delivery/out.png"]}`)

	catalogSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.CatalogCalls.Add(1)
		io.WriteString(w, catalogBody)
	}))
	t.Cleanup(catalogSrv.Close)

	chatSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.ChatCalls.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, tok := range []string{"Try", " the", " **Linen Shirt** ($89.50)"} {
			fmt.Fprintf(w, `data: {"choices":[{"delta":{"content":%q}}]}`+"\n\n", tok)
		}
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(chatSrv.Close)

	replicateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.ReplicateCalls.Add(1)
		io.WriteString(w, env.ReplicateResponse.Load().(string))
	}))
	t.Cleanup(replicateSrv.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	env.Limiter = ratelimit.New(dailyLimit)

	catalogClient := catalog.NewClient(config.CatalogConfig{
		BaseURL: catalogSrv.URL, Dataset: "production", APIVersion: "2024-01-01",
		Timeout: 2 * time.Second,
	})
	llmClient := llm.NewClient(config.OpenAIConfig{
		APIKey: "sk-test", Model: "gpt-4", BaseURL: chatSrv.URL,
	})
	chatHandler := chat.NewHandler(chat.NewService(catalogClient, llmClient), env.Limiter)

	runner := replicate.NewClient(config.ReplicateConfig{
		Token: "r8_test", Version: "v1-hash", BaseURL: replicateSrv.URL,
		Timeout: 5 * time.Second,
	})
	cache := tryon.NewCache(redisClient, time.Hour)
	tryonHandler := tryon.NewHandler(tryon.NewService(runner, cache))

	router := api.NewRouter(redisClient, api.RouterConfig{}, api.HandlerSet{
		Chat:      chatHandler.Chat,
		ChatQuota: chatHandler.Quota,
		TryOn:     tryonHandler.TryOn,
	})

	env.Server = httptest.NewServer(router)
	t.Cleanup(env.Server.Close)

	return env
}
