package generation

import (
	"context"
	"fmt"

	"skillbridge/internal/llm"
)

// ChatGenerator generates recommendations through an OpenAI-compatible
// chat-completions endpoint.
type ChatGenerator struct {
	client llm.Client
	model  string
}

// NewChatGenerator uses the client's default model when model is empty.
func NewChatGenerator(client llm.Client, model string) *ChatGenerator {
	return &ChatGenerator{client: client, model: model}
}

func (g *ChatGenerator) Generate(ctx context.Context, in Input) (*RecommendationSet, error) {
	prompt, err := userPrompt(in)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := g.client.ChatCompletion(ctx, &llm.ChatRequest{
		Model: g.model,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature:    0.4,
		MaxTokens:      1500,
		ResponseFormat: llm.FormatJSON,
	})
	if err != nil {
		return nil, err
	}
	return parseModelOutput(resp.Content())
}
