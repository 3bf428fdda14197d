// Package llm wraps the chat-completion API used for essay generation,
// answer refinement, school recommendations and resume extraction.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/myadmit/admit-backend/internal/config"
	"github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the provider answers with no choices.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Client sends one system + user prompt pair and returns the raw reply text.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// OpenAIClient talks to OpenAI or any OpenAI-compatible endpoint (OpenRouter).
type OpenAIClient struct {
	api   *openai.Client
	model string
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	return &OpenAIClient{
		api:   openai.NewClientWithConfig(clientCfg),
		model: cfg.OpenAIModel,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
