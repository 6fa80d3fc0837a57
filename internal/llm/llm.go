package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"estate-insights/internal/config"
)

// Completer is the chat completion capability. The model identifier is fixed
// at construction; only the prompt varies per call.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type openAICompleter struct {
	llm *openai.LLM
}

// NewCompleter builds a completion client against an OpenAI-compatible
// endpoint using the configured fixed model.
func NewCompleter(cfg *config.LLMConfig) (Completer, error) {
	key := os.Getenv(cfg.KeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.KeyEnv)
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return &openAICompleter{llm: llm}, nil
}

func (c *openAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return res.Choices[0].Content, nil
}
