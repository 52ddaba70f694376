// Package text provides utilities for text processing, such as document chunking.
//
// The functions in this package are designed to be Unicode-aware, ensuring correct
// handling of multi-byte characters. It includes strategies for splitting large
// documents into smaller, overlapping pieces that can be embedded independently.
package text

import (
	"errors"
	"strings"
)

var (
	ErrInvalidChunkSize = errors.New("chunk_size must be a positive integer")
	ErrInvalidOverlap   = errors.New("chunk_overlap must be non-negative and smaller than chunk_size")
)

// Chunk represents a single piece of text produced by a splitter.
// It includes the content and its sequential position within the original document.
type Chunk struct {
	Content string `json:"content"`
	Index   int    `json:"chunk_index"`
}

// Splitter divides a text into ordered segments.
type Splitter interface {
	SplitText(text string) ([]string, error)
}

// Split runs s over text and numbers the resulting segments 0..N-1 in emission order.
// Empty or whitespace-only text yields no chunks and never reaches the splitter.
func Split(s Splitter, text string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return []Chunk{}, nil
	}

	parts, err := s.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, Chunk{Content: p, Index: len(chunks)})
	}
	return chunks, nil
}

// ValidateSizes checks the size/overlap contract shared by every strategy.
func ValidateSizes(chunkSize, chunkOverlap int) error {
	if chunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return ErrInvalidOverlap
	}
	return nil
}

// FixedSizeSplitter splits text into fixed-size rune windows with a specified overlap.
//
// It operates on runes rather than bytes so multi-byte characters (emojis, accented
// letters) are never cut in half. With a ChunkSize of 100 and a ChunkOverlap of 20
// the window advances by 80 runes: runes[0:100], runes[80:180], runes[160:260], ...
// Sentence boundaries are ignored.
type FixedSizeSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

func (s *FixedSizeSplitter) SplitText(text string) ([]string, error) {
	if err := ValidateSizes(s.ChunkSize, s.ChunkOverlap); err != nil {
		return nil, err
	}

	var chunks []string
	runes := []rune(text)
	length := len(runes)

	for i := 0; i < length; i += s.ChunkSize - s.ChunkOverlap {
		end := min(i+s.ChunkSize, length)
		if part := strings.TrimSpace(string(runes[i:end])); part != "" {
			chunks = append(chunks, part)
		}
		// The tail is already covered; another step would only repeat the overlap.
		if end == length {
			break
		}
	}

	return chunks, nil
}
