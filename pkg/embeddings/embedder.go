package embeddings

import (
	"context"
	"fmt"
)

// Embedder defines the interface for converting text into vector representations.
type Embedder interface {
	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ProviderError reports a failed call to the embedding provider: a non-success
// status, a transport failure, an undecodable payload or a response that does not
// line up with the request.
type ProviderError struct {
	// StatusCode is the provider's HTTP status, or 0 when no response was received.
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("embedding provider failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("embedding provider failed: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
