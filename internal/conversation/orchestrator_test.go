package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/archsim/internal/catalog"
	"github.com/terra-clan/archsim/internal/llm"
	"github.com/terra-clan/archsim/internal/models"
	"github.com/terra-clan/archsim/internal/persona"
)

type recordingGateway struct {
	reply   string
	err     error
	prompts []string
}

func (g *recordingGateway) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *recordingGateway) Provider() string { return "fake" }

func newOrchestrator(t *testing.T, gw llm.Gateway) *Orchestrator {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewOrchestrator(persona.NewBuilder(c), gw)
}

func TestRenderTranscript(t *testing.T) {
	turns := []models.ChatTurn{
		{Role: "user", Content: "ユーザー数は？"},
		{Role: "assistant", Content: "たくさんです"},
		{Role: "model", Content: "本当にたくさん"},
	}

	got := RenderTranscript("INSTRUCTION", turns, 0)

	want := "INSTRUCTION\n\n--- 会話履歴 ---\n" +
		"Architect: ユーザー数は？\n" +
		"Client: たくさんです\n" +
		"Client: 本当にたくさん\n" +
		"Client: "
	assert.Equal(t, want, got)
}

func TestRenderTranscriptEmpty(t *testing.T) {
	assert.Equal(t, "X\n\n--- 会話履歴 ---\nClient: ", RenderTranscript("X", nil, 0))
}

func TestRenderTranscriptDropsMidSequenceSystemTurns(t *testing.T) {
	turns := []models.ChatTurn{
		{Role: "user", Content: "a"},
		{Role: "system", Content: "SECRET-OVERRIDE"},
		{Role: "assistant", Content: "b"},
		{Role: "system", Content: "ANOTHER"},
	}

	got := RenderTranscript("I", turns, 0)

	assert.NotContains(t, got, "SECRET-OVERRIDE")
	assert.NotContains(t, got, "ANOTHER")
	assert.Equal(t, "I\n\n--- 会話履歴 ---\nArchitect: a\nClient: b\nClient: ", got)
}

func TestPromptCustomScenarioConsumesSystemTurnOnce(t *testing.T) {
	gw := &recordingGateway{reply: "ok"}
	o := newOrchestrator(t, gw)

	req := models.ChatRequest{
		ScenarioID:  models.ScenarioCustom,
		PartnerRole: "cto",
		Messages: []models.ChatTurn{
			{Role: "system", Content: "HIDDEN-CUSTOM-CONTEXT"},
			{Role: "user", Content: "SLAは？"},
		},
	}

	prompt := o.Prompt(req)

	assert.Equal(t, 1, strings.Count(prompt, "HIDDEN-CUSTOM-CONTEXT"))
	assert.True(t, strings.HasPrefix(prompt, "HIDDEN-CUSTOM-CONTEXT\n\n"))
	history := prompt[strings.Index(prompt, "--- 会話履歴 ---"):]
	assert.NotContains(t, history, "HIDDEN-CUSTOM-CONTEXT")
	assert.True(t, strings.HasSuffix(prompt, "Architect: SLAは？\nClient: "))
}

func TestPromptFixedScenario(t *testing.T) {
	o := newOrchestrator(t, &recordingGateway{})

	prompt := o.Prompt(models.ChatRequest{
		ScenarioID: models.ScenarioInternalTool,
		Messages:   []models.ChatTurn{{Role: "user", Content: "何人使いますか"}},
	})

	assert.True(t, strings.HasPrefix(prompt, "あなたは「社内勤怠管理ツール」の発注担当者"))
	assert.Contains(t, prompt, "非技術系CEO")
	assert.True(t, strings.HasSuffix(prompt, "Architect: 何人使いますか\nClient: "))
}

func TestReplyAppendsPersonaTurn(t *testing.T) {
	gw := &recordingGateway{reply: "予算は少なめです"}
	o := newOrchestrator(t, gw)

	req := models.ChatRequest{
		ScenarioID: models.ScenarioSNSApp,
		Messages:   []models.ChatTurn{{Role: "user", Content: "予算は？"}},
	}

	ex, err := o.Reply(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "予算は少なめです", ex.Reply)
	require.Len(t, ex.Transcript, 2)
	assert.Equal(t, models.ChatTurn{Role: "assistant", Content: "予算は少なめです"}, ex.Transcript[1])
	assert.Len(t, gw.prompts, 1)
	assert.Len(t, req.Messages, 1)
}

func TestReplyUpstreamFailure(t *testing.T) {
	gw := &recordingGateway{err: errors.New("connection reset")}
	o := newOrchestrator(t, gw)

	ex, err := o.Reply(context.Background(), models.ChatRequest{ScenarioID: models.ScenarioSNSApp})

	assert.Nil(t, ex)
	require.Error(t, err)
	assert.True(t, llm.IsUpstream(err))
	assert.Len(t, gw.prompts, 1)
}
