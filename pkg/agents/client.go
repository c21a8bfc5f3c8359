package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultClarifyTimeout  = 30 * time.Second
	defaultPipelineTimeout = 300 * time.Second
)

// Client talks to the external agents service (question generator, intent
// classifier, recommenders and the CFE combiner behind one HTTP API).
type Client struct {
	resolver *URLResolver

	// The pipeline sequences several LLM agents and can take minutes, so it
	// gets its own client with a much longer timeout.
	clarifyClient  *http.Client
	pipelineClient *http.Client
}

func NewClient(resolver *URLResolver) *Client {
	return &Client{
		resolver:       resolver,
		clarifyClient:  &http.Client{Timeout: defaultClarifyTimeout},
		pipelineClient: &http.Client{Timeout: defaultPipelineTimeout},
	}
}

// GenerateClarifyingQuestions asks the question-generator agent for the full
// ordered question set for a raw user query.
func (c *Client) GenerateClarifyingQuestions(ctx context.Context, userInput string) (*CQOutput, error) {
	baseURL, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve agents backend: %w", err)
	}

	endpoint := fmt.Sprintf("%s/generate-clarifying-questions?%s",
		baseURL, url.Values{"user_input": {userInput}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var out CQOutput
	if err := c.do(c.clarifyClient, req, &out); err != nil {
		return nil, fmt.Errorf("generate clarifying questions: %w", err)
	}
	return &out, nil
}

// RunPipeline executes the full recommendation pipeline for a session whose
// clarification answers are already persisted.
func (c *Client) RunPipeline(ctx context.Context, sessionId string) (*CFEOutput, error) {
	baseURL, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve agents backend: %w", err)
	}

	endpoint := fmt.Sprintf("%s/run-pipeline?%s",
		baseURL, url.Values{"session_id": {sessionId}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var out CFEOutput
	if err := c.do(c.pipelineClient, req, &out); err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}
	return &out, nil
}

// Health checks the currently resolved backend.
func (c *Client) Health(ctx context.Context) error {
	baseURL, err := c.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.clarifyClient.Do(req)
	if err != nil {
		return fmt.Errorf("agents health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("agents health check: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(client *http.Client, req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("agents request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("agents error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
