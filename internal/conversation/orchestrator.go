// Package conversation replays a client-held transcript to the persona and returns its next line.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/terra-clan/archsim/internal/llm"
	"github.com/terra-clan/archsim/internal/models"
	"github.com/terra-clan/archsim/internal/persona"
)

const (
	historySeparator = "\n\n--- 会話履歴 ---\n"
	architectLabel   = "Architect"
	clientLabel      = "Client"
)

// Orchestrator turns a ChatRequest into one upstream call
type Orchestrator struct {
	builder *persona.Builder
	gateway llm.Gateway
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(builder *persona.Builder, gateway llm.Gateway) *Orchestrator {
	return &Orchestrator{builder: builder, gateway: gateway}
}

// Exchange is the outcome of one chat call
type Exchange struct {
	Reply string
	// Transcript is the submitted turns followed by the persona reply
	Transcript []models.ChatTurn
}

// RenderTranscript builds the prompt: instruction, separator, one line per dialogue
// turn after the consumed prefix, and a trailing cue for the persona's next line.
// System turns past the prefix are dropped.
func RenderTranscript(instruction string, turns []models.ChatTurn, consumed int) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString(historySeparator)

	for i, turn := range turns {
		if i < consumed {
			continue
		}
		if turn.Role == models.TurnSystem {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker(turn.Role), turn.Content)
	}

	b.WriteString(clientLabel + ": ")
	return b.String()
}

func speaker(role string) string {
	if role == models.TurnUser {
		return architectLabel
	}
	return clientLabel
}

// Prompt assembles the full upstream prompt for a request
func (o *Orchestrator) Prompt(req models.ChatRequest) string {
	inst := o.builder.Build(req.ScenarioID, models.NormalizeRole(req.PartnerRole), req.Messages)
	return RenderTranscript(inst.String(), req.Messages, inst.Consumed)
}

// Reply asks the persona for its next line. Upstream failures are returned as
// *llm.UpstreamError and are not retried.
func (o *Orchestrator) Reply(ctx context.Context, req models.ChatRequest) (*Exchange, error) {
	prompt := o.Prompt(req)

	slog.Debug("sending chat prompt",
		"scenario_id", req.ScenarioID,
		"partner_role", req.PartnerRole,
		"turns", len(req.Messages),
		"prompt_bytes", len(prompt),
	)

	reply, err := o.gateway.Generate(ctx, prompt)
	if err != nil {
		if !llm.IsUpstream(err) {
			err = &llm.UpstreamError{Provider: o.gateway.Provider(), Err: err}
		}
		return nil, err
	}

	transcript := make([]models.ChatTurn, 0, len(req.Messages)+1)
	transcript = append(transcript, req.Messages...)
	transcript = append(transcript, models.ChatTurn{Role: models.TurnAssistant, Content: reply})

	return &Exchange{Reply: reply, Transcript: transcript}, nil
}
