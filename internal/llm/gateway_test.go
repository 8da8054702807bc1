package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/archsim/internal/config"
	"github.com/terra-clan/archsim/internal/metrics"
)

// upstream fakes a provider endpoint; the handler sees every request body.
func upstream(t *testing.T, suffix string, status int, body string, seen *atomic.Int32, prompts chan<- string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, suffix) {
			http.Error(w, "unexpected path "+r.URL.Path, http.StatusNotFound)
			return
		}
		seen.Add(1)
		if prompts != nil {
			raw, _ := io.ReadAll(r.Body)
			select {
			case prompts <- string(raw):
			default:
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const geminiOK = `{"candidates":[{"content":{"role":"model","parts":[{"text":"予算は安くしたいですね。"}]},"finishReason":"STOP"}]}`

func TestGeminiGenerate(t *testing.T) {
	var calls atomic.Int32
	prompts := make(chan string, 1)
	srv := upstream(t, ":generateContent", http.StatusOK, geminiOK, &calls, prompts)

	gw, err := NewGemini(context.Background(), config.ModelConfig{
		APIKey: "test-key", Name: "gemini-test", BaseURL: srv.URL + "/",
	})
	require.NoError(t, err)

	text, err := gw.Generate(context.Background(), "Architect: 予算は？\nClient: ")
	require.NoError(t, err)
	assert.Equal(t, "予算は安くしたいですね。", text)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, <-prompts, "Architect: 予算は？")
}

func TestGeminiEmptyCandidates(t *testing.T) {
	var calls atomic.Int32
	srv := upstream(t, ":generateContent", http.StatusOK, `{"candidates":[]}`, &calls, nil)

	gw, err := NewGemini(context.Background(), config.ModelConfig{APIKey: "k", Name: "m", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = gw.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsUpstream(err))
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestGeminiServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := upstream(t, ":generateContent", http.StatusInternalServerError,
		`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, &calls, nil)

	gw, err := NewGemini(context.Background(), config.ModelConfig{APIKey: "k", Name: "m", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = gw.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsUpstream(err))
	assert.Equal(t, int32(1), calls.Load())
}

const anthropicOK = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-test",
  "content": [{"type": "text", "text": "コストは"}, {"type": "text", "text": "抑えたいです。"}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 10, "output_tokens": 5}
}`

func TestAnthropicGenerate(t *testing.T) {
	var calls atomic.Int32
	prompts := make(chan string, 1)
	srv := upstream(t, "/v1/messages", http.StatusOK, anthropicOK, &calls, prompts)

	gw := NewAnthropic(config.ModelConfig{APIKey: "k", Name: "claude-test", BaseURL: srv.URL + "/"})

	text, err := gw.Generate(context.Background(), "Client: ")
	require.NoError(t, err)
	assert.Equal(t, "コストは抑えたいです。", text)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(<-prompts), &sent))
	assert.Equal(t, "claude-test", sent["model"])
}

func TestAnthropicServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := upstream(t, "/v1/messages", http.StatusServiceUnavailable,
		`{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`, &calls, nil)

	gw := NewAnthropic(config.ModelConfig{APIKey: "k", Name: "claude-test", BaseURL: srv.URL + "/"})

	_, err := gw.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsUpstream(err))
	assert.Equal(t, int32(1), calls.Load())
}

const openAIOK = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-test",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "月額はいくらまで？"}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 3, "completion_tokens": 4, "total_tokens": 7}
}`

func TestOpenAIGenerate(t *testing.T) {
	var calls atomic.Int32
	srv := upstream(t, "/chat/completions", http.StatusOK, openAIOK, &calls, nil)

	gw, err := NewOpenAI(config.ModelConfig{APIKey: "k", Name: "gpt-test", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := gw.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "月額はいくらまで？", text)
	assert.Equal(t, config.ProviderOpenAI, gw.Provider())
}

func TestOpenAIServerError(t *testing.T) {
	var calls atomic.Int32
	srv := upstream(t, "/chat/completions", http.StatusBadGateway, `{"error":{"message":"bad gateway"}}`, &calls, nil)

	gw, err := NewOpenAI(config.ModelConfig{APIKey: "k", Name: "gpt-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = gw.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsUpstream(err))
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), config.ModelConfig{Provider: config.ProviderGemini}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfiguration))
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.ModelConfig{Provider: "llama", APIKey: "k"}, nil)
	assert.True(t, errors.Is(err, config.ErrConfiguration))
}

type stubGateway struct {
	text string
	err  error
}

func (s stubGateway) Generate(context.Context, string) (string, error) { return s.text, s.err }
func (s stubGateway) Provider() string                                 { return "stub" }

func TestInstrumentRecordsOutcome(t *testing.T) {
	m := metrics.New()

	ok := Instrument(stubGateway{text: "fine"}, m)
	_, _ = ok.Generate(context.Background(), "p")

	failing := Instrument(stubGateway{err: &UpstreamError{Provider: "stub", Err: errors.New("down")}}, m)
	_, err := failing.Generate(context.Background(), "p")
	assert.True(t, IsUpstream(err))
	assert.Equal(t, "stub", failing.Provider())

	count, err := testutil.GatherAndCount(m.Registry(), "archsim_upstream_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInstrumentWithoutMetrics(t *testing.T) {
	gw := stubGateway{text: "x"}
	assert.Equal(t, Gateway(gw), Instrument(gw, nil))
}
