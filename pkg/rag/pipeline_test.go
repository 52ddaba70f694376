package rag

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sanonone/kektorrag/pkg/embeddings"
	"github.com/sanonone/kektorrag/pkg/text"
)

// stubEmbedder returns [len(text), i] for every text and records its calls.
type stubEmbedder struct {
	calls [][]string
	err   error
	short bool
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls = append(s.calls, texts)
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), float32(i)}
	}
	if s.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func newTestPipeline(t *testing.T, emb embeddings.Embedder) *Pipeline {
	t.Helper()
	cfg := Config{ChunkingStrategy: text.StrategySentence, ChunkSize: 100, ChunkOverlap: 20}
	p, err := NewPipeline(cfg, emb, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

const doc = "Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda mu. Nu xi omicron pi. Rho sigma tau upsilon. Phi chi psi omega."

func TestProcessZipsChunksAndEmbeddings(t *testing.T) {
	emb := &stubEmbedder{}
	p := newTestPipeline(t, emb)
	meta := map[string]any{"source": "greek.txt", "page": float64(3)}

	res, err := p.Process(context.Background(), Request{Content: ptr(doc), Metadata: meta, ChunkSize: ptr(40), ChunkOverlap: ptr(0)})
	if err != nil {
		t.Fatal(err)
	}

	if len(emb.calls) != 1 {
		t.Fatalf("expected exactly one provider call, got %d", len(emb.calls))
	}
	if res.TotalChunks != len(res.Chunks) || res.TotalChunks < 2 {
		t.Fatalf("unexpected totals: %d chunks, total %d", len(res.Chunks), res.TotalChunks)
	}
	for i, c := range res.Chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if emb.calls[0][i] != c.Content {
			t.Errorf("chunk %d was embedded out of order", i)
		}
		if want := []float32{float32(len(c.Content)), float32(i)}; !reflect.DeepEqual(c.Embedding, want) {
			t.Errorf("chunk %d got embedding %v, want %v", i, c.Embedding, want)
		}
		if !reflect.DeepEqual(c.Metadata, meta) {
			t.Errorf("chunk %d metadata %v", i, c.Metadata)
		}
	}
}

func TestProcessEmptyContent(t *testing.T) {
	for _, content := range []string{"", "   \n\t"} {
		emb := &stubEmbedder{}
		p := newTestPipeline(t, emb)

		res, err := p.Process(context.Background(), Request{Content: ptr(content)})
		if err != nil {
			t.Fatal(err)
		}
		if res.Chunks == nil || len(res.Chunks) != 0 || res.TotalChunks != 0 {
			t.Errorf("%q: expected empty result, got %+v", content, res)
		}
		if len(emb.calls) != 0 {
			t.Errorf("%q: provider must not be called", content)
		}
	}
}

func TestProcessShortTextSingleChunk(t *testing.T) {
	p := newTestPipeline(t, &stubEmbedder{})
	res, err := p.Process(context.Background(), Request{Content: ptr("Hello world.")})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalChunks != 1 || res.Chunks[0].Content != "Hello world." || res.Chunks[0].Metadata != nil {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestProcessValidation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		msg  string
	}{
		{"missing content", Request{}, "content is required"},
		{"negative size", Request{Content: ptr(doc), ChunkSize: ptr(-1)}, "chunk_size must be greater than 0"},
		{"negative overlap", Request{Content: ptr(doc), ChunkOverlap: ptr(-1)}, "chunk_overlap must be greater than or equal to 0"},
		{"overlap equals size", Request{Content: ptr(doc), ChunkSize: ptr(10), ChunkOverlap: ptr(10)}, "chunk_overlap (10) must be smaller than chunk_size (10)"},
		{"overlap above default size", Request{Content: ptr(doc), ChunkOverlap: ptr(150)}, "must be smaller than chunk_size (100)"},
		{"unknown strategy", Request{Content: ptr(doc), ChunkingStrategy: "semantic"}, "chunking_strategy must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb := &stubEmbedder{}
			_, err := newTestPipeline(t, emb).Process(context.Background(), tt.req)
			if KindOf(err) != KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected %q in %q", tt.msg, err.Error())
			}
			if len(emb.calls) != 0 {
				t.Error("provider must not be called on invalid input")
			}
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	p := newTestPipeline(t, &stubEmbedder{})

	tests := []struct {
		name          string
		req           Request
		size, overlap int
	}{
		{"all defaults", Request{}, 100, 20},
		{"zero size means default", Request{ChunkSize: ptr(0)}, 100, 20},
		{"smaller size scales overlap", Request{ChunkSize: ptr(50)}, 50, 10},
		{"larger size keeps overlap", Request{ChunkSize: ptr(400)}, 400, 20},
		{"explicit overlap", Request{ChunkSize: ptr(50), ChunkOverlap: ptr(0)}, 50, 0},
	}

	for _, tt := range tests {
		tt.req.Content = ptr(doc)
		cfg, err := p.resolve("test", tt.req)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if cfg.ChunkSize != tt.size || cfg.ChunkOverlap != tt.overlap {
			t.Errorf("%s: got %d/%d, want %d/%d", tt.name, cfg.ChunkSize, cfg.ChunkOverlap, tt.size, tt.overlap)
		}
	}
}

func TestProcessProviderFailure(t *testing.T) {
	perr := &embeddings.ProviderError{StatusCode: 401, Message: "No auth credentials found"}
	_, err := newTestPipeline(t, &stubEmbedder{err: perr}).Process(context.Background(), Request{Content: ptr(doc)})

	if KindOf(err) != KindProvider {
		t.Fatalf("expected provider error, got %v", err)
	}
	if !errors.Is(err, perr) {
		t.Error("provider error is not wrapped")
	}
	if err.Error() != perr.Error() {
		t.Errorf("message changed: %q", err.Error())
	}

	_, err = newTestPipeline(t, &stubEmbedder{short: true}).Process(context.Background(), Request{Content: ptr(doc)})
	if KindOf(err) != KindProvider {
		t.Errorf("expected provider error on count mismatch, got %v", err)
	}
}

func TestSplitDoesNotEmbed(t *testing.T) {
	emb := &stubEmbedder{}
	chunks, err := newTestPipeline(t, emb).Split(Request{Content: ptr(doc), ChunkSize: ptr(30), ChunkingStrategy: text.StrategyFixed})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 || len(emb.calls) != 0 {
		t.Errorf("expected chunks without provider calls, got %d chunks and %d calls", len(chunks), len(emb.calls))
	}
}

func TestNewPipelineRejectsBadConfig(t *testing.T) {
	if _, err := NewPipeline(Config{ChunkingStrategy: "sentence", ChunkSize: 10, ChunkOverlap: 10}, &stubEmbedder{}, nil); err == nil {
		t.Error("expected error for overlap >= size")
	}
	if _, err := NewPipeline(Config{ChunkingStrategy: "nope", ChunkSize: 10}, &stubEmbedder{}, nil); err == nil {
		t.Error("expected error for unknown strategy")
	}
	if _, err := NewPipeline(DefaultConfig(), nil, nil); err == nil {
		t.Error("expected error for nil embedder")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Error("foreign errors must be internal")
	}
	if KindOf(validationErrorf("op", "bad")) != KindValidation {
		t.Error("validation kind lost")
	}
	if KindInternal.String() != "internal" || KindProvider.String() != "provider" {
		t.Error("unexpected kind names")
	}
}
