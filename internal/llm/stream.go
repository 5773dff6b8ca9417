package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Stream yields content tokens from an SSE chat-completions response.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func newStream(body io.ReadCloser) *Stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{body: body, scanner: sc}
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Recv returns the next non-empty content token in arrival order. It
// returns io.EOF after the upstream [DONE] marker, and a wrapped error if
// the stream breaks mid-flight.
func (s *Stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed keep-alive or vendor extension frames.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if tok := chunk.Choices[0].Delta.Content; tok != "" {
			return tok, nil
		}
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("reading chat stream: %w", err)
	}
	// Upstream closed without [DONE]; treat a clean close as end of stream.
	return "", io.EOF
}

func (s *Stream) Close() error {
	return s.body.Close()
}
