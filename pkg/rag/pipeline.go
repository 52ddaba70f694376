package rag

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sanonone/kektorrag/pkg/embeddings"
	"github.com/sanonone/kektorrag/pkg/metrics"
	"github.com/sanonone/kektorrag/pkg/text"
)

// Pipeline orchestrates a chunk request: Validate -> Split -> Embed -> Zip.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	cfg      Config
	embedder embeddings.Embedder
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPipeline creates a ready-to-use pipeline.
// The Embedder is injected to allow testing with stubs or swapping providers.
func NewPipeline(cfg Config, embedder embeddings.Embedder, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, errors.New("rag: nil embedder")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Counter == nil {
		cfg.Counter = text.RuneCounter{}
	}

	return &Pipeline{
		cfg:      cfg,
		embedder: embedder,
		validate: newValidator(),
		logger:   logger,
	}, nil
}

// Config returns the defaults the pipeline applies.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process splits the request content, embeds every chunk in a single provider call
// and returns the chunks in order. Any failure aborts the whole request.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	const op = "rag.Process"

	chunks, err := p.split(op, req)
	if err != nil {
		return nil, err
	}

	result := &Result{Chunks: make([]ChunkResult, 0, len(chunks))}
	if len(chunks) == 0 {
		return result, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		p.logger.Warn("embedding failed", zap.Int("chunks", len(texts)), zap.Error(err))
		return nil, &Error{Kind: KindProvider, Op: op, Err: err}
	}
	if len(vectors) != len(chunks) {
		return nil, &Error{Kind: KindProvider, Op: op, Err: &embeddings.ProviderError{
			Message: fmt.Sprintf("expected %d embeddings, got %d", len(chunks), len(vectors)),
		}}
	}

	for i, c := range chunks {
		result.Chunks = append(result.Chunks, ChunkResult{
			Content:    c.Content,
			Embedding:  vectors[i],
			ChunkIndex: c.Index,
			Metadata:   req.Metadata,
		})
	}
	result.TotalChunks = len(result.Chunks)
	metrics.ChunksPerDocument.Observe(float64(result.TotalChunks))

	p.logger.Debug("document processed", zap.Int("chunks", result.TotalChunks))
	return result, nil
}

// Split validates the request and returns its chunks without embedding them.
func (p *Pipeline) Split(req Request) ([]text.Chunk, error) {
	return p.split("rag.Split", req)
}

func (p *Pipeline) split(op string, req Request) ([]text.Chunk, error) {
	cfg, err := p.resolve(op, req)
	if err != nil {
		return nil, err
	}

	splitter, err := text.NewSplitter(cfg)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Err: err}
	}

	chunks, err := text.Split(splitter, *req.Content)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Op: op, Err: fmt.Errorf("failed to split content: %w", err)}
	}
	return chunks, nil
}

// resolve applies the configured defaults to the request.
//
// An omitted or zero chunk_size means the default. An omitted chunk_overlap means the
// default overlap, scaled down in proportion when the request asks for a smaller
// chunk_size. An explicit chunk_overlap must be smaller than the effective chunk_size.
func (p *Pipeline) resolve(op string, req Request) (text.Config, error) {
	if err := p.validate.Struct(req); err != nil {
		return text.Config{}, &Error{Kind: KindValidation, Op: op, Err: validationMessage(err)}
	}

	cfg := text.Config{
		Strategy:     p.cfg.ChunkingStrategy,
		ChunkSize:    p.cfg.ChunkSize,
		ChunkOverlap: p.cfg.ChunkOverlap,
		Counter:      p.cfg.Counter,
	}
	if req.ChunkingStrategy != "" {
		cfg.Strategy = req.ChunkingStrategy
	}
	if req.ChunkSize != nil && *req.ChunkSize != 0 {
		cfg.ChunkSize = *req.ChunkSize
	}

	switch {
	case req.ChunkOverlap != nil:
		cfg.ChunkOverlap = *req.ChunkOverlap
		if cfg.ChunkOverlap >= cfg.ChunkSize {
			return text.Config{}, validationErrorf(op, "chunk_overlap (%d) must be smaller than chunk_size (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
		}
	case cfg.ChunkSize < p.cfg.ChunkSize:
		cfg.ChunkOverlap = p.cfg.ChunkOverlap * cfg.ChunkSize / p.cfg.ChunkSize
	}

	return cfg, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("strategy", func(fl validator.FieldLevel) bool {
		return text.IsStrategy(fl.Field().String())
	})
	return v
}

// validationMessage turns validator errors into a single readable message.
func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param()))
		case "strategy":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(text.Strategies, ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
