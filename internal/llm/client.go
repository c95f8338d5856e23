// Package llm provides answer generation via the Gemini API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/munidigital/tramites-rag/internal/domain"
)

// Generator defines the interface for answer generation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Client generates text using the Gemini generateContent API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Config holds generation client configuration.
type Config struct {
	APIKey  string
	Model   string // e.g., "gemini-1.5-flash"
	BaseURL string // Default: https://generativelanguage.googleapis.com/v1beta
	Timeout time.Duration
}

// NewClient creates a new generation client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Generate produces a completion for the given prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.GenerationError("send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp generateResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
			return "", domain.GenerationError(
				fmt.Sprintf("API error: %s (status: %s)", errResp.Error.Message, errResp.Error.Status), nil)
		}
		return "", domain.GenerationError(fmt.Sprintf("API error: status %d", resp.StatusCode), nil)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", domain.GenerationError("no candidates returned", nil)
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// Model returns the model being used.
func (c *Client) Model() string {
	return c.model
}

// MockGenerator returns canned completions for testing.
type MockGenerator struct {
	Response string
	Err      error
	Prompts  []string
}

// Generate records the prompt and returns the configured response.
func (m *MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Model returns the mock model name.
func (m *MockGenerator) Model() string {
	return "mock-generation-model"
}

var (
	_ Generator = (*Client)(nil)
	_ Generator = (*MockGenerator)(nil)
)
