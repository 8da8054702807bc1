package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/terra-clan/archsim/internal/config"
)

// OpenAIGateway calls an OpenAI-compatible chat completion endpoint through langchaingo
type OpenAIGateway struct {
	llm *openai.LLM
}

// NewOpenAI creates an OpenAI gateway
func NewOpenAI(cfg config.ModelConfig) (*OpenAIGateway, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Name),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	return &OpenAIGateway{llm: llm}, nil
}

// Generate sends the prompt as a single human message
func (g *OpenAIGateway) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		return "", &UpstreamError{Provider: config.ProviderOpenAI, Err: fmt.Errorf("generate: %w", err)}
	}

	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Provider: config.ProviderOpenAI, Err: ErrEmptyResponse}
	}

	return text, nil
}

// Provider returns the provider name
func (g *OpenAIGateway) Provider() string {
	return config.ProviderOpenAI
}
