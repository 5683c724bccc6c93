package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPOption is a functional option for configuring an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithTimeout overrides the default per-request HTTP timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(p *HTTPProvider) { p.httpClient.Timeout = d }
}

// WithHTTPClient overrides the default HTTP client entirely.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.httpClient = client }
}

// HTTPProvider calls an external embedding service over HTTP: POST
// {baseURL}/embed with {"model", "input": [...]}, expecting back
// {"embeddings": [[...], ...]}.
type HTTPProvider struct {
	baseURL    string
	model      string
	dimensions int
	httpClient *http.Client
}

// NewHTTPProvider constructs an HTTPProvider. baseURL is the embedding
// service's root URL (spec §6: config.EmbeddingBaseURL).
func NewHTTPProvider(baseURL, model string, dimensions int, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *HTTPProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embeddings http: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embeddings http: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings http: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings http: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embeddings http: read response: %w", err)
	}

	var parsed embedResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("embeddings http: parse response: %w", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embeddings http: expected %d embeddings, got %d", len(texts), len(parsed.Embeddings))
	}

	return parsed.Embeddings, nil
}

func (p *HTTPProvider) Dimensions() int { return p.dimensions }

func (p *HTTPProvider) ModelID() string { return p.model }
