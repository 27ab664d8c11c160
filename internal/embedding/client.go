package embedding

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Client talks to an external embedding microservice. Returned vectors are
// checked against the configured dimension and L2-normalized so they are
// interchangeable with the hashing embedder's output.
type Client struct {
	baseURL   string
	dimension int
	client    *http.Client
}

// NewClient creates a new embedding service client
func NewClient(baseURL string, dimension int, timeout time.Duration) *Client {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		dimension: dimension,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// EmbedRequest represents a single text embedding request
type EmbedRequest struct {
	Text string `json:"text"`
}

// EmbedResponse represents the embedding response
type EmbedResponse struct {
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
	Dimension int       `json:"dimension"`
}

// BatchEmbedRequest represents multiple text embedding request
type BatchEmbedRequest struct {
	Texts []string `json:"texts"`
}

// BatchEmbedResponse represents the batch embedding response
type BatchEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Count      int         `json:"count"`
	Dimension  int         `json:"dimension"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status               string `json:"status"`
	EmbeddingModel       string `json:"embedding_model"`
	EmbeddingModelLoaded bool   `json:"embedding_model_loaded"`
}

func (c *Client) Dimension() int {
	return c.dimension
}

// Embed generates an embedding for a single text. Blank text maps to the
// zero vector without a round trip.
func (c *Client) Embed(text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float64, c.dimension), nil
	}

	var embedResp EmbedResponse
	if err := c.post("/embed", EmbedRequest{Text: text}, &embedResp); err != nil {
		return nil, err
	}

	return c.checked(embedResp.Embedding)
}

// EmbedBatch generates embeddings for multiple texts in one request
func (c *Client) EmbedBatch(texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty texts list provided")
	}

	var batchResp BatchEmbedResponse
	if err := c.post("/embed/batch", BatchEmbedRequest{Texts: texts}, &batchResp); err != nil {
		return nil, err
	}

	if len(batchResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(batchResp.Embeddings), len(texts))
	}

	out := make([][]float64, len(texts))
	for i, v := range batchResp.Embeddings {
		checked, err := c.checked(v)
		if err != nil {
			return nil, err
		}
		out[i] = checked
	}
	return out, nil
}

// HealthCheck checks if the embedding service is healthy
func (c *Client) HealthCheck() (*HealthResponse, error) {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return nil, fmt.Errorf("failed to make health check request: %w", err)
	}
	defer resp.Body.Close()

	var healthResp HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}

	return &healthResp, nil
}

func (c *Client) post(path string, body any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("embedding service error (status %d): %s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) checked(v []float64) ([]float64, error) {
	if len(v) != c.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(v), c.dimension)
	}
	return Normalize(v), nil
}
