package chat

import (
	"context"
	"fmt"

	"github.com/dresscode-shop/gateway/internal/catalog"
	"github.com/dresscode-shop/gateway/internal/llm"
)

// Service orchestrates one chat turn: fetch a fresh catalog snapshot,
// prepend the grounding system turn, and open the upstream token stream.
type Service struct {
	catalog *catalog.Client
	llm     *llm.Client
}

func NewService(catalogClient *catalog.Client, llmClient *llm.Client) *Service {
	return &Service{catalog: catalogClient, llm: llmClient}
}

// Stream opens the upstream token stream for the given conversation.
// The catalog is re-fetched on every call; an empty substitute would make
// the model fabricate products, so fetch failure is a hard error.
func (s *Service) Stream(ctx context.Context, turns []Turn) (*llm.Stream, error) {
	products, err := s.catalog.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}

	messages := make([]llm.Message, 0, len(turns)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: BuildSystemPrompt(products),
	})
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}

	stream, err := s.llm.StreamChat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat upstream: %w", err)
	}
	return stream, nil
}
