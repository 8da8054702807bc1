package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/terra-clan/archsim/internal/config"
)

const anthropicMaxTokens = 4096

// AnthropicGateway calls the Claude Messages API
type AnthropicGateway struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates an Anthropic gateway. SDK retries are disabled.
func NewAnthropic(cfg config.ModelConfig) *AnthropicGateway {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicGateway{
		client: anthropic.NewClient(opts...),
		model:  cfg.Name,
	}
}

// Generate sends the prompt as a single user message and joins the text blocks of the reply
func (g *AnthropicGateway) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &UpstreamError{Provider: config.ProviderAnthropic, Err: fmt.Errorf("create message: %w", err)}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(block.Text)
		}
	}

	if strings.TrimSpace(text.String()) == "" {
		return "", &UpstreamError{Provider: config.ProviderAnthropic, Err: ErrEmptyResponse}
	}

	return text.String(), nil
}

// Provider returns the provider name
func (g *AnthropicGateway) Provider() string {
	return config.ProviderAnthropic
}
