// Package embedding provides text embedding generation via the Gemini API.
package embedding

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

// Task types understood by the embedContent endpoint. Documents and queries
// are embedded with different task types so retrieval quality improves.
const (
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Embedder defines the interface for embedding generation.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimension() int
}

// Client generates embeddings using the Gemini embedContent API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	model        string
	dimension    int
	requestDelay time.Duration
}

// Config holds embedding client configuration.
type Config struct {
	APIKey       string
	Model        string // e.g., "models/embedding-001"
	BaseURL      string // Default: https://generativelanguage.googleapis.com/v1beta
	Dimension    int    // Default: 768
	RequestDelay time.Duration
	Timeout      time.Duration
}

// NewClient creates a new embedding client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	if cfg.Model == "" {
		cfg.Model = "models/embedding-001"
	}

	if cfg.Dimension <= 0 {
		cfg.Dimension = 768
	}

	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = 100 * time.Millisecond
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		dimension:    cfg.Dimension,
		requestDelay: cfg.RequestDelay,
	}, nil
}

type embedRequest struct {
	Model    string       `json:"model"`
	Content  embedContent `json:"content"`
	TaskType string       `json:"taskType"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedPart struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// EmbedDocument embeds text for indexing.
func (c *Client) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, taskRetrievalDocument)
}

// EmbedQuery embeds a user question for similarity search.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, taskRetrievalQuery)
}

// EmbedDocuments embeds texts one at a time, pausing between requests to
// stay under the provider's rate limits. A failure aborts the whole batch.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for i, text := range texts {
		emb, err := c.EmbedDocument(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d of %d: %w", i+1, len(texts), err)
		}
		embeddings = append(embeddings, emb)

		if i < len(texts)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.requestDelay):
			}
		}
	}

	return embeddings, nil
}

func (c *Client) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	reqBody := embedRequest{
		Model:    c.model,
		Content:  embedContent{Parts: []embedPart{{Text: text}}},
		TaskType: taskType,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:embedContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.EmbeddingError("send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp embedResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
			return nil, domain.EmbeddingError(
				fmt.Sprintf("API error: %s (status: %s)", errResp.Error.Message, errResp.Error.Status), nil)
		}
		return nil, domain.EmbeddingError(fmt.Sprintf("API error: status %d", resp.StatusCode), nil)
	}

	var embResp embedResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(embResp.Embedding.Values) == 0 {
		return nil, domain.EmbeddingError("empty embedding returned", nil)
	}

	return embResp.Embedding.Values, nil
}

// Model returns the model being used.
func (c *Client) Model() string {
	return c.model
}

// Dimension returns the embedding dimension.
func (c *Client) Dimension() int {
	return c.dimension
}

// MockClient provides a deterministic embedding client for testing.
type MockClient struct {
	dimension int
}

// NewMockClient creates a mock client.
func NewMockClient(dimension int) *MockClient {
	if dimension <= 0 {
		dimension = 768
	}
	return &MockClient{dimension: dimension}
}

// EmbedDocument generates a hash-based embedding so equal inputs produce
// equal vectors.
func (c *MockClient) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	emb := make([]float32, c.dimension)
	for j, char := range text {
		emb[j%c.dimension] += float32(char) / 1000.0
	}
	return normalize(emb), nil
}

// EmbedQuery generates a mock query embedding.
func (c *MockClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.EmbedDocument(ctx, text)
}

// EmbedDocuments generates mock embeddings for a batch.
func (c *MockClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := c.EmbedDocument(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Model returns the mock model name.
func (c *MockClient) Model() string {
	return "mock-embedding-model"
}

// Dimension returns the embedding dimension.
func (c *MockClient) Dimension() int {
	return c.dimension
}

func normalize(v []float32) []float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := float32(1.0) / float32(sqrt(float64(sum)))
	for i := range v {
		v[i] *= norm
	}
	return v
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 10; i++ {
		z = (z + x/z) / 2
	}
	return z
}

var (
	_ Embedder = (*Client)(nil)
	_ Embedder = (*MockClient)(nil)
)
