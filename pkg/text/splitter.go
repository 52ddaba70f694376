package text

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunking strategies.
const (
	StrategySentence  = "sentence"
	StrategyRecursive = "recursive"
	StrategyMarkdown  = "markdown"
	StrategyFixed     = "fixed"
)

// Strategies lists every strategy NewSplitter accepts.
var Strategies = []string{StrategySentence, StrategyRecursive, StrategyMarkdown, StrategyFixed}

// Config selects and parameterises a splitter.
type Config struct {
	Strategy     string
	ChunkSize    int
	ChunkOverlap int
	// Counter measures chunk sizes. Nil means runes. The fixed strategy always uses runes.
	Counter Counter
}

// NewSplitter creates the appropriate splitter based on configuration.
func NewSplitter(cfg Config) (Splitter, error) {
	if err := ValidateSizes(cfg.ChunkSize, cfg.ChunkOverlap); err != nil {
		return nil, err
	}

	counter := cfg.Counter
	if counter == nil {
		counter = RuneCounter{}
	}

	switch cfg.Strategy {
	case StrategySentence, "":
		return NewSentenceSplitter(cfg.ChunkSize, cfg.ChunkOverlap, counter), nil
	case StrategyRecursive:
		return trimmed{newRecursive(cfg, counter)}, nil
	case StrategyMarkdown:
		return trimmed{markdownSplitter{
			structured: textsplitter.NewMarkdownTextSplitter(
				textsplitter.WithChunkSize(cfg.ChunkSize),
				textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
				textsplitter.WithHeadingHierarchy(true),
				// Indented and fenced code is dropped unless rendered.
				textsplitter.WithCodeBlocks(true),
				// Keep link targets and image sources in the text.
				textsplitter.WithReferenceLinks(true),
				textsplitter.WithLenFunc(counter.Count),
			),
			fallback: newRecursive(cfg, counter),
		}}, nil
	case StrategyFixed:
		return &FixedSizeSplitter{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap}, nil
	default:
		return nil, fmt.Errorf("unknown chunking strategy %q (want one of %s)", cfg.Strategy, strings.Join(Strategies, ", "))
	}
}

func newRecursive(cfg Config, counter Counter) textsplitter.TextSplitter {
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(cfg.ChunkSize),
		textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ".", "!", "?", " ", ""}),
		textsplitter.WithKeepSeparator(true),
		textsplitter.WithLenFunc(counter.Count),
	)
}

// IsStrategy reports whether name is a known chunking strategy.
func IsStrategy(name string) bool {
	for _, s := range Strategies {
		if s == name {
			return true
		}
	}
	return false
}

// trimmed drops the surrounding whitespace langchaingo splitters leave on chunks,
// and the chunks that were only whitespace.
type trimmed struct {
	inner textsplitter.TextSplitter
}

func (t trimmed) SplitText(text string) ([]string, error) {
	parts, err := t.inner.SplitText(text)
	if err != nil {
		return nil, err
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
