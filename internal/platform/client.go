// Package platform is the HTTP client for the host platform's
// model-invocation API: embedding and rerank calls are proxied through it.
// The models themselves live on the platform, never here.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/datapivot/schemabridge/internal/common"
)

// Client talks to the platform model API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
}

// Embedder produces one vector per input text.
type Embedder interface {
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// Reranker scores documents against a query.
type Reranker interface {
	Rerank(ctx context.Context, model, query string, documents []string) ([]RerankResult, error)
}

// RerankResult is one scored document, Index referring to the request order.
type RerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"relevance_score"`
}

// NewClient creates a platform client. The API key, when set, is sent as a
// bearer token on every request.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *common.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Embed invokes the named embedding model over the given texts.
func (c *Client) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := map[string]interface{}{
		"model": model,
		"input": texts,
	}
	body, err := c.post(ctx, "/v1/embeddings", req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Rerank invokes the named rerank model over the documents.
// Results come back sorted by descending relevance.
func (c *Client) Rerank(ctx context.Context, model, query string, documents []string) ([]RerankResult, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	req := map[string]interface{}{
		"model":     model,
		"query":     query,
		"documents": documents,
	}
	body, err := c.post(ctx, "/v1/rerank", req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results []RerankResult `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse rerank response: %w", err)
	}
	for _, r := range resp.Results {
		if r.Index < 0 || r.Index >= len(documents) {
			return nil, fmt.Errorf("rerank result index %d out of range", r.Index)
		}
	}
	return resp.Results, nil
}

// post performs a POST request with JSON body and returns the response body.
func (c *Client) post(ctx context.Context, path string, data interface{}) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	c.logger.Debug().
		Str("method", "POST").
		Str("path", path).
		Msg("platform request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Dur("duration", duration).Msg("platform request failed")
		return nil, fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().
		Str("status", resp.Status).
		Int("status_code", resp.StatusCode).
		Dur("duration", duration).
		Msg("platform response")

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s", errResp.Error)
		}
		return nil, fmt.Errorf("platform returned %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
