package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sanonone/kektorrag/pkg/metrics"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is OpenRouter's OpenAI-compatible API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	BaseURL string
	Model   string
	client  *openai.Client
}

func NewOpenAIEmbedder(baseURL, model, apiKey string, timeout time.Duration) *OpenAIEmbedder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIEmbedder{
		BaseURL: cfg.BaseURL,
		Model:   model,
		client:  openai.NewClientWithConfig(cfg),
	}
}

// EmbedBatch sends all texts in a single request. An empty input returns an empty
// result without contacting the provider. No retries are attempted.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	start := time.Now()
	vectors, err := e.embed(ctx, texts)
	metrics.EmbeddingRequestDuration.Observe(time.Since(start).Seconds())

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(outcome).Inc()

	return vectors, err
}

// Embed returns the vector of a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.Model),
	})
	if err != nil {
		return nil, toProviderError(err)
	}
	return align(resp.Data, len(texts))
}

// align orders the returned vectors by their index field. Providers that leave every
// index at zero are taken in positional order.
func align(data []openai.Embedding, n int) ([][]float32, error) {
	if len(data) != n {
		return nil, &ProviderError{Message: fmt.Sprintf("expected %d embeddings, got %d", n, len(data))}
	}

	out := make([][]float32, n)
	if n > 1 && allZeroIndex(data) {
		for i, d := range data {
			out[i] = d.Embedding
		}
		return out, nil
	}

	seen := make([]bool, n)
	for _, d := range data {
		if d.Index < 0 || d.Index >= n || seen[d.Index] {
			return nil, &ProviderError{Message: fmt.Sprintf("invalid embedding index %d in response of %d items", d.Index, n)}
		}
		seen[d.Index] = true
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func allZeroIndex(data []openai.Embedding) bool {
	for _, d := range data {
		if d.Index != 0 {
			return false
		}
	}
	return true
}

func toProviderError(err error) *ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := strings.TrimSpace(string(reqErr.Body))
		if msg == "" {
			msg = reqErr.HTTPStatus
		}
		return &ProviderError{StatusCode: reqErr.HTTPStatusCode, Message: msg, Err: err}
	}

	return &ProviderError{Message: err.Error(), Err: err}
}
