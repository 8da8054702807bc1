package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", WithHTTPClient(srv.Client()), WithTimeout(5*time.Second))
}

func TestChat(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sns_app", req.ScenarioID)
		assert.Len(t, req.Messages, 1)

		_, _ = io.WriteString(w, `{"reply":"DAUは100万です","status":"success"}`)
	})

	resp, err := c.Chat(context.Background(), ChatRequest{
		ScenarioID: "sns_app",
		Messages:   []ChatTurn{{Role: RoleUser, Content: "規模は？"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "DAUは100万です", resp.Reply)
	assert.Equal(t, StatusSuccess, resp.Status)
}

func TestEvaluate(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/evaluate", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload, "nodes")

		_, _ = io.WriteString(w, `{"score":75,"feedback":"良い","improvement":"CDNを追加","status":"success"}`)
	})

	result, err := c.Evaluate(context.Background(), map[string]any{"nodes": []any{}})
	require.NoError(t, err)
	assert.Equal(t, 75, result.Score)
	assert.Equal(t, "CDNを追加", result.Improvement)
}

func TestProjects(t *testing.T) {
	id := uuid.New()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/projects":
			_, _ = io.WriteString(w, `{"id":"`+id.String()+`","status":"success","message":"Project saved"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects/"+id.String():
			_, _ = io.WriteString(w, `{"id":"`+id.String()+`","title":"v1","scenario_id":"custom","diagram_data":{"nodes":[],"edges":[]},"chat_history":[]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"status":"error","message":"project not found"}`)
		}
	})

	saved, err := c.SaveProject(context.Background(), SaveProjectRequest{Title: "v1"})
	require.NoError(t, err)
	assert.Equal(t, id.String(), saved.ID)

	project, err := c.GetProject(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "v1", project.Title)

	_, err = c.GetProject(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestListScenarios(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scenarios", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":"internal_tool","title":"勤怠","description":"","requirements":{"users":"50"}}]`)
	})

	scenarios, err := c.ListScenarios(context.Background())
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "50", scenarios[0].Requirements.Users)
}

func TestServerErrorIsNotNotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"status":"error","message":"Failed to save"}`)
	})

	_, err := c.SaveProject(context.Background(), SaveProjectRequest{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "Failed to save")
}
