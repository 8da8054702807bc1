// Package llm is the only place that talks to the upstream language model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terra-clan/archsim/internal/config"
	"github.com/terra-clan/archsim/internal/metrics"
)

// Gateway sends a single prompt upstream and returns the generated text.
// Implementations never retry.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// UpstreamError wraps a transport failure or non-success response from the model provider
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err came from the model provider
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ErrEmptyResponse is returned when the provider answers without any text
var ErrEmptyResponse = errors.New("empty response")

// New creates the gateway for the configured provider, instrumented with m.
// A missing API key is a configuration error.
func New(ctx context.Context, cfg config.ModelConfig, m *metrics.Metrics) (Gateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key for model provider %s is not set", config.ErrConfiguration, cfg.Provider)
	}

	var (
		gw  Gateway
		err error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		gw, err = NewGemini(ctx, cfg)
	case config.ProviderAnthropic:
		gw = NewAnthropic(cfg)
	case config.ProviderOpenAI:
		gw, err = NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown model provider %q", config.ErrConfiguration, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return Instrument(gw, m), nil
}

type instrumented struct {
	next    Gateway
	metrics *metrics.Metrics
}

// Instrument records call counts and latency for every upstream call
func Instrument(gw Gateway, m *metrics.Metrics) Gateway {
	if m == nil {
		return gw
	}
	return &instrumented{next: gw, metrics: m}
}

func (g *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := g.next.Generate(ctx, prompt)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	g.metrics.ObserveUpstream(g.next.Provider(), outcome, time.Since(start))

	return text, err
}

func (g *instrumented) Provider() string {
	return g.next.Provider()
}
