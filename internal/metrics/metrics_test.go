package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveUpstream("gemini", "success", 150*time.Millisecond)
	m.ObserveUpstream("gemini", "error", time.Second)
	m.Evaluation("partial_success")
	m.Chat("success")
	m.Chat("success")
	m.Save("error")
	m.HTTPRequest("/api/chat", "POST", "200")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("gemini", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues("partial_success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.chats.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saves.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/chat", "POST", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Chat("error")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `archsim_chat_replies_total{status="error"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveUpstream("openai", "success", time.Millisecond)
		m.Evaluation("success")
		m.Chat("success")
		m.Save("success")
		m.HTTPRequest("/", "GET", "200")
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
