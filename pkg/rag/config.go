package rag

import (
	"fmt"

	"github.com/sanonone/kektorrag/pkg/text"
)

// Config holds the defaults a Pipeline applies to requests that leave them out.
type Config struct {
	// "sentence", "recursive", "markdown" or "fixed"
	ChunkingStrategy string
	ChunkSize        int
	ChunkOverlap     int
	// Counter measures ChunkSize and ChunkOverlap. Nil means runes.
	Counter text.Counter
}

func DefaultConfig() Config {
	return Config{
		ChunkingStrategy: text.StrategySentence,
		ChunkSize:        512,
		ChunkOverlap:     50,
	}
}

// Validate checks that the defaults form a usable splitter configuration.
func (c Config) Validate() error {
	if err := text.ValidateSizes(c.ChunkSize, c.ChunkOverlap); err != nil {
		return fmt.Errorf("invalid default chunk sizes (%d/%d): %w", c.ChunkSize, c.ChunkOverlap, err)
	}
	if !text.IsStrategy(c.ChunkingStrategy) {
		return fmt.Errorf("unknown chunking strategy %q", c.ChunkingStrategy)
	}
	return nil
}
