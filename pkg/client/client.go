// Package client provides a Go client for the chunk-and-embed HTTP API.
//
// It wraps the three endpoints of the service (health, banner and /chunk) and
// turns {"detail": ...} error bodies into *APIError values.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sanonone/kektorrag/pkg/rag"
)

// APIError represents an error returned by the API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Info is the service banner.
type Info struct {
	Service        string `json:"service"`
	Version        string `json:"version"`
	Status         string `json:"status"`
	EmbeddingModel string `json:"embedding_model"`
}

// ChunkOptions are the optional knobs of a chunk request. Zero values leave the
// server defaults in place.
type ChunkOptions struct {
	Metadata     map[string]any
	ChunkSize    int
	ChunkOverlap *int
	Strategy     string
}

// Client talks to a running service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the service at baseURL (e.g. "http://localhost:8000").
// Embedding large documents can take a while, hence the generous timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.jsonRequest(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Info returns the service banner.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.jsonRequest(ctx, http.MethodGet, "/", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Chunk splits content into chunks and returns them with their embeddings.
func (c *Client) Chunk(ctx context.Context, content string, opts ChunkOptions) (*rag.Result, error) {
	req := rag.Request{
		Content:          &content,
		Metadata:         opts.Metadata,
		ChunkOverlap:     opts.ChunkOverlap,
		ChunkingStrategy: opts.Strategy,
	}
	if opts.ChunkSize != 0 {
		req.ChunkSize = &opts.ChunkSize
	}

	var res rag.Result
	if err := c.jsonRequest(ctx, http.MethodPost, "/chunk", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// jsonRequest is a helper method to execute all requests to the API.
// It handles JSON serialization, HTTP calls, and error management.
func (c *Client) jsonRequest(ctx context.Context, method, endpoint string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Detail != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Detail}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
