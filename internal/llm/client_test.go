package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresscode-shop/gateway/internal/config"
)

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q}}]}`+"\n\n", content)
}

func newTestClient(url string) *Client {
	return NewClient(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4", BaseURL: url})
}

func TestStreamChat_RelaysTokensInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			assert.True(t, req.Stream)
			assert.Equal(t, "gpt-4", req.Model)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseChunk("Hel"))
		io.WriteString(w, sseChunk("lo"))
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	stream, err := newTestClient(srv.URL).StreamChat(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	defer stream.Close()

	var tokens []string
	for {
		tok, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		tokens = append(tokens, tok)
	}
	assert.Equal(t, []string{"Hel", "lo"}, tokens)
}

func TestStreamChat_SkipsEmptyDeltasAndCommentFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, ": keep-alive\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{}}]}`+"\n\n")
		io.WriteString(w, sseChunk("ok"))
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	stream, err := newTestClient(srv.URL).StreamChat(context.Background(), nil)
	require.NoError(t, err)
	defer stream.Close()

	tok, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "ok", tok)

	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestStreamChat_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).StreamChat(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad key")
}

func TestStreamChat_CancellationAbortsStream(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseChunk("first"))
		w.(http.Flusher).Flush()
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := newTestClient(srv.URL).StreamChat(ctx, nil)
	require.NoError(t, err)
	defer stream.Close()

	tok, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "first", tok)

	<-started
	cancel()

	deadline := time.After(2 * time.Second)
	errCh := make(chan error, 1)
	go func() {
		_, err := stream.Recv()
		errCh <- err
	}()
	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.NotEqual(t, io.EOF, err)
	case <-deadline:
		t.Fatal("Recv did not observe cancellation")
	}
}

func TestStream_RecvAfterEOFStaysEOF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	stream, err := newTestClient(srv.URL).StreamChat(context.Background(), nil)
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
}
