// Package mcp exposes the chunking pipeline as Model Context Protocol tools.
package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/kektorrag/pkg/rag"
)

func NewMCPServer(p *rag.Pipeline, version string) *mcp.Server {
	service := NewService(p)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "kektorrag",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "chunk_document",
		Description: "Split a document into overlapping chunks and return an embedding vector for each chunk.",
	}, service.ChunkDocument)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "split_text",
		Description: "Split a document into overlapping chunks without embedding them.",
	}, service.SplitText)

	return s
}

// NewHTTPHandler serves s over the streamable HTTP transport.
func NewHTTPHandler(s *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s }, nil)
}
