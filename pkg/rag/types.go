package rag

// Request is the input of a chunk operation.
type Request struct {
	// Content is required; an empty string is valid and yields no chunks.
	Content *string `json:"content" validate:"required"`
	// Metadata is attached unchanged to every chunk.
	Metadata map[string]any `json:"metadata,omitempty"`
	// ChunkSize overrides the configured size. Zero means the default.
	ChunkSize *int `json:"chunk_size,omitempty" validate:"omitzero,gt=0"`
	// ChunkOverlap overrides the configured overlap and must be smaller than the effective size.
	ChunkOverlap     *int   `json:"chunk_overlap,omitempty" validate:"omitnil,gte=0"`
	ChunkingStrategy string `json:"chunking_strategy,omitempty" validate:"omitempty,strategy"`
}

// ChunkResult is one embedded chunk.
type ChunkResult struct {
	Content    string         `json:"content"`
	Embedding  []float32      `json:"embedding"`
	ChunkIndex int            `json:"chunk_index"`
	Metadata   map[string]any `json:"metadata"`
}

// Result is the output of Process. Chunks is never nil.
type Result struct {
	Chunks      []ChunkResult `json:"chunks"`
	TotalChunks int           `json:"total_chunks"`
}
