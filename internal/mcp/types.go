package mcp

import "github.com/sanonone/kektorrag/pkg/text"

// --- Tool Arguments ---

type ChunkDocumentArgs struct {
	Content          string         `json:"content" jsonschema:"The document text to split and embed"`
	Metadata         map[string]any `json:"metadata,omitempty" jsonschema:"Arbitrary metadata copied onto every chunk"`
	ChunkSize        int            `json:"chunk_size,omitempty" jsonschema:"Maximum chunk size in the configured unit. Omit for the server default"`
	ChunkOverlap     *int           `json:"chunk_overlap,omitempty" jsonschema:"Units shared by neighbouring chunks. Must be smaller than chunk_size"`
	ChunkingStrategy string         `json:"chunking_strategy,omitempty" jsonschema:"One of sentence, recursive, markdown, fixed"`
}

type SplitTextArgs struct {
	Content          string `json:"content" jsonschema:"The text to split"`
	ChunkSize        int    `json:"chunk_size,omitempty" jsonschema:"Maximum chunk size in the configured unit. Omit for the server default"`
	ChunkOverlap     *int   `json:"chunk_overlap,omitempty" jsonschema:"Units shared by neighbouring chunks. Must be smaller than chunk_size"`
	ChunkingStrategy string `json:"chunking_strategy,omitempty" jsonschema:"One of sentence, recursive, markdown, fixed"`
}

// --- Tool Results ---

type EmbeddedChunk struct {
	Content    string         `json:"content"`
	Embedding  []float32      `json:"embedding"`
	ChunkIndex int            `json:"chunk_index"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type ChunkDocumentResult struct {
	Chunks      []EmbeddedChunk `json:"chunks"`
	TotalChunks int             `json:"total_chunks"`
}

type SplitTextResult struct {
	Chunks      []text.Chunk `json:"chunks"`
	TotalChunks int          `json:"total_chunks"`
}
