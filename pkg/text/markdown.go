package text

import (
	"github.com/clipperhouse/uax29/v2/words"
	"github.com/tmc/langchaingo/textsplitter"
)

// markdownSplitter splits along the markdown structure and falls back to a plain
// splitter when the structured pass loses words. The markdown renderer skips
// constructs it has no handler for, such as raw HTML blocks.
type markdownSplitter struct {
	structured textsplitter.TextSplitter
	fallback   textsplitter.TextSplitter
}

func (s markdownSplitter) SplitText(text string) ([]string, error) {
	chunks, err := s.structured.SplitText(text)
	if err != nil {
		return nil, err
	}
	if covers(chunks, text) {
		return chunks, nil
	}
	return s.fallback.SplitText(text)
}

// covers reports whether every word of text occurs in chunks at least as many
// times as it does in text. Punctuation and markup symbols are ignored.
func covers(chunks []string, text string) bool {
	missing := make(map[string]int)
	seg := words.FromString(text)
	for seg.Next() {
		if w := seg.Value(); isWordLike(w) {
			missing[w]++
		}
	}

	for _, c := range chunks {
		seg := words.FromString(c)
		for seg.Next() {
			w := seg.Value()
			if n, ok := missing[w]; ok {
				if n == 1 {
					delete(missing, w)
				} else {
					missing[w] = n - 1
				}
			}
		}
	}
	return len(missing) == 0
}
