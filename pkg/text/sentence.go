package text

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
)

// SentenceSplitter packs text into chunks of at most ChunkSize units (measured by
// Counter) and prefers to end a chunk on a sentence boundary.
//
// The text is segmented into sentences and then into word pieces (UAX #29); whitespace
// and punctuation stay attached to the word before them, so joining consecutive pieces
// reproduces the original span exactly. Consecutive chunks share a tail of roughly
// ChunkOverlap units. A single word longer than ChunkSize becomes its own chunk.
type SentenceSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Counter      Counter
}

func NewSentenceSplitter(chunkSize, chunkOverlap int, counter Counter) *SentenceSplitter {
	if counter == nil {
		counter = RuneCounter{}
	}
	return &SentenceSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Counter:      counter,
	}
}

type piece struct {
	text        string
	size        int
	sentenceEnd bool
}

func (s *SentenceSplitter) SplitText(text string) ([]string, error) {
	if err := ValidateSizes(s.ChunkSize, s.ChunkOverlap); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	pieces := s.pieces(text)
	var chunks []string

	// start: first piece of the current window. done: first piece not yet emitted.
	start, done := 0, 0
	for start < len(pieces) {
		end, total := start, 0
		for end < len(pieces) && (end == start || total+pieces[end].size <= s.ChunkSize) {
			total += pieces[end].size
			end++
		}

		if end == len(pieces) {
			chunks = appendChunk(chunks, pieces[start:end])
			break
		}

		cut := s.sentenceCut(pieces, start, end, done)
		chunks = appendChunk(chunks, pieces[start:cut])
		start, done = s.overlapStart(pieces, start, cut), cut
	}

	return chunks, nil
}

// pieces segments text into word pieces and measures each one.
func (s *SentenceSplitter) pieces(text string) []piece {
	var out []piece

	sents := sentences.FromString(text)
	for sents.Next() {
		first := len(out)
		prefix := ""

		seg := words.FromString(sents.Value())
		for seg.Next() {
			w := seg.Value()
			if isWordLike(w) {
				out = append(out, piece{text: prefix + w})
				prefix = ""
				continue
			}
			if len(out) > first {
				out[len(out)-1].text += w
			} else {
				prefix += w
			}
		}

		// A sentence made only of symbols joins the previous piece.
		if prefix != "" {
			if len(out) > 0 {
				out[len(out)-1].text += prefix
			} else {
				out = append(out, piece{text: prefix})
			}
		}
		if len(out) > 0 {
			out[len(out)-1].sentenceEnd = true
		}
	}

	for i := range out {
		out[i].size = s.Counter.Count(out[i].text)
	}
	return out
}

// sentenceCut picks where the window [start, end) is closed. It returns the last
// sentence end after done as long as the chunk stays at least half full; otherwise
// the window is cut at the word boundary end.
func (s *SentenceSplitter) sentenceCut(pieces []piece, start, end, done int) int {
	size := 0
	for i := start; i < end; i++ {
		size += pieces[i].size
	}

	for k := end; k > done && k > start; k-- {
		if pieces[k-1].sentenceEnd {
			if 2*size >= s.ChunkSize {
				return k
			}
			return end
		}
		size -= pieces[k-1].size
	}
	return end
}

// overlapStart returns the first piece of the next window: the longest tail of
// [start, cut) that fits in ChunkOverlap and still leaves room for pieces[cut].
// The result is always greater than start.
func (s *SentenceSplitter) overlapStart(pieces []piece, start, cut int) int {
	if s.ChunkOverlap == 0 {
		return cut
	}

	next := pieces[cut].size
	tail, ns := 0, cut
	for ns-1 > start {
		size := pieces[ns-1].size
		if tail+size > s.ChunkOverlap || tail+size+next > s.ChunkSize {
			break
		}
		tail += size
		ns--
	}
	return ns
}

func appendChunk(chunks []string, pieces []piece) []string {
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.text)
	}
	if chunk := strings.TrimSpace(b.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}
