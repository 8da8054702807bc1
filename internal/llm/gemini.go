package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/terra-clan/archsim/internal/config"
)

// GeminiGateway calls the Gemini API through the genai SDK
type GeminiGateway struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini gateway
func NewGemini(ctx context.Context, cfg config.ModelConfig) (*GeminiGateway, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiGateway{client: client, model: cfg.Name}, nil
}

// Generate sends the prompt as a single user turn
func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &UpstreamError{Provider: config.ProviderGemini, Err: fmt.Errorf("generate content: %w", err)}
	}

	if len(resp.Candidates) == 0 {
		return "", &UpstreamError{Provider: config.ProviderGemini, Err: ErrEmptyResponse}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Provider: config.ProviderGemini, Err: ErrEmptyResponse}
	}

	return text, nil
}

// Provider returns the provider name
func (g *GeminiGateway) Provider() string {
	return config.ProviderGemini
}
