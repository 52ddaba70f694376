package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sanonone/kektorrag/internal/config"
	"github.com/sanonone/kektorrag/internal/server"
	"github.com/sanonone/kektorrag/pkg/embeddings"
	"github.com/sanonone/kektorrag/pkg/rag"
	"github.com/sanonone/kektorrag/pkg/text"
)

// newService starts the real HTTP stack backed by a fake embedding provider.
func newService(t *testing.T) *httptest.Server {
	t.Helper()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"index": i, "embedding": []float32{float32(i)}}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(provider.Close)

	cfg := config.Default()
	cfg.EmbeddingModel = "client-test-model"
	p, err := rag.NewPipeline(rag.Config{
		ChunkingStrategy: text.StrategySentence,
		ChunkSize:        60,
		ChunkOverlap:     10,
	}, embeddings.NewOpenAIEmbedder(provider.URL, cfg.EmbeddingModel, "k", time.Second), nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := server.NewServer(cfg, p, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newService(t)
	c := New(srv.URL + "/")
	ctx := context.Background()

	h, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if h.Status != "healthy" || h.Service != "rag" {
		t.Errorf("unexpected health %+v", h)
	}

	info, err := c.Info(ctx)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.EmbeddingModel != "client-test-model" || info.Status != "running" {
		t.Errorf("unexpected info %+v", info)
	}

	res, err := c.Chunk(ctx, "First sentence here. Second sentence follows. A third one closes the paragraph.", ChunkOptions{
		Metadata:  map[string]any{"doc": "a"},
		ChunkSize: 30,
	})
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if res.TotalChunks < 2 || len(res.Chunks) != res.TotalChunks {
		t.Fatalf("unexpected result %+v", res)
	}
	for i, ch := range res.Chunks {
		if ch.ChunkIndex != i || ch.Metadata["doc"] != "a" || len(ch.Embedding) != 1 {
			t.Errorf("bad chunk %d: %+v", i, ch)
		}
	}
}

func TestClientAPIError(t *testing.T) {
	srv := newService(t)
	overlap := 30

	_, err := New(srv.URL).Chunk(context.Background(), "abc", ChunkOptions{ChunkSize: 30, ChunkOverlap: &overlap})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Message == "" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}
