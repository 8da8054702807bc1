package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested resource does not exist
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client is a Go SDK for the archsim API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new archsim client. Evaluation and chat wait on the
// model, so the default timeout is generous.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Evaluate submits a design payload for scoring. The payload is sent as-is.
func (c *Client) Evaluate(ctx context.Context, payload any) (*EvaluationResult, error) {
	var result EvaluationResult
	if err := c.call(ctx, http.MethodPost, "/api/evaluate", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat sends the full transcript and returns the persona's next reply
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var result ChatResponse
	if err := c.call(ctx, http.MethodPost, "/api/chat", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveProject creates or overwrites a project
func (c *Client) SaveProject(ctx context.Context, req SaveProjectRequest) (*SaveProjectResponse, error) {
	var result SaveProjectResponse
	if err := c.call(ctx, http.MethodPost, "/api/projects", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProject loads a saved project. A missing project yields ErrNotFound.
func (c *Client) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	var result Project
	if err := c.call(ctx, http.MethodGet, "/api/projects/"+id.String(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListScenarios returns the public scenario summaries
func (c *Client) ListScenarios(ctx context.Context) ([]ScenarioSummary, error) {
	var result []ScenarioSummary
	if err := c.call(ctx, http.MethodGet, "/api/scenarios", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}
