package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/kektorrag/pkg/rag"
)

type Service struct {
	pipeline *rag.Pipeline
}

func NewService(p *rag.Pipeline) *Service {
	return &Service{pipeline: p}
}

// --- Tool Handlers ---

func (s *Service) ChunkDocument(ctx context.Context, req *mcp.CallToolRequest, args ChunkDocumentArgs) (*mcp.CallToolResult, ChunkDocumentResult, error) {
	res, err := s.pipeline.Process(ctx, rag.Request{
		Content:          &args.Content,
		Metadata:         args.Metadata,
		ChunkSize:        &args.ChunkSize,
		ChunkOverlap:     args.ChunkOverlap,
		ChunkingStrategy: args.ChunkingStrategy,
	})
	if err != nil {
		return nil, ChunkDocumentResult{}, err
	}

	out := ChunkDocumentResult{
		Chunks:      make([]EmbeddedChunk, len(res.Chunks)),
		TotalChunks: res.TotalChunks,
	}
	for i, c := range res.Chunks {
		out.Chunks[i] = EmbeddedChunk(c)
	}
	return nil, out, nil
}

func (s *Service) SplitText(ctx context.Context, req *mcp.CallToolRequest, args SplitTextArgs) (*mcp.CallToolResult, SplitTextResult, error) {
	chunks, err := s.pipeline.Split(rag.Request{
		Content:          &args.Content,
		ChunkSize:        &args.ChunkSize,
		ChunkOverlap:     args.ChunkOverlap,
		ChunkingStrategy: args.ChunkingStrategy,
	})
	if err != nil {
		return nil, SplitTextResult{}, err
	}
	return nil, SplitTextResult{Chunks: chunks, TotalChunks: len(chunks)}, nil
}
