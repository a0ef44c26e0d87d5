// Package tools is the HTTP client for the external tool execution
// service. It moves bytes; deciding whether an execution succeeded is the
// classifier's job.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes bounds how much of a tool response we will read. Tool
// payloads are listings and status objects, not file contents.
const maxResponseBytes = 4 << 20

// ToolInfo describes one tool the service advertises.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Client talks to the tool service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client for the service at baseURL. Timeout bounds
// each request end to end; zero means no client-side timeout beyond the
// caller's context.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type executeRequest struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

// Execute runs one tool and returns the raw response body. A non-2xx
// status or transport failure is an error; the body, when present, is
// still returned so the caller can surface the service's own message.
func (c *Client) Execute(ctx context.Context, tool string, parameters map[string]any) ([]byte, error) {
	if parameters == nil {
		parameters = map[string]any{}
	}
	body, err := json.Marshal(executeRequest{Tool: tool, Parameters: parameters})
	if err != nil {
		return nil, fmt.Errorf("encoding tool request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building tool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing tool %s: %w", tool, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading tool %s response: %w", tool, err)
	}

	c.logger.Debug("tool executed",
		"tool", tool,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return payload, fmt.Errorf("tool %s: service returned %d", tool, resp.StatusCode)
	}
	return payload, nil
}

// List fetches the tools the service advertises.
func (c *Client) List(ctx context.Context) ([]ToolInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tools", nil)
	if err != nil {
		return nil, fmt.Errorf("building tool list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing tools: service returned %d", resp.StatusCode)
	}

	var out struct {
		Tools []ToolInfo `json:"tools"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding tool list: %w", err)
	}
	return out.Tools, nil
}
