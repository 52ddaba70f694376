package text

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	// BPE ranks ship with the binary; no download at startup.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Length units understood by NewCounter.
const (
	UnitRune  = "rune"
	UnitWord  = "word"
	UnitToken = "token"
)

// DefaultTokenEncoding is the tiktoken encoding used by OpenAI embedding models.
const DefaultTokenEncoding = "cl100k_base"

// Counter measures text in the unit chunk sizes are expressed in.
type Counter interface {
	Count(text string) int
}

// RuneCounter counts Unicode code points.
type RuneCounter struct{}

func (RuneCounter) Count(text string) int {
	return utf8.RuneCountInString(text)
}

// WordCounter counts UAX #29 word segments that contain at least one letter or digit,
// so whitespace and punctuation are free.
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	n := 0
	seg := words.FromString(text)
	for seg.Next() {
		if isWordLike(seg.Value()) {
			n++
		}
	}
	return n
}

// TokenCounter counts tokens with a tiktoken encoding, the unit embedding models bill
// and limit input in.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter loads the named encoding ("cl100k_base", "p50k_base", ...).
func NewTokenCounter(encoding string) (*TokenCounter, error) {
	if encoding == "" {
		encoding = DefaultTokenEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encoding, err)
	}
	return &TokenCounter{enc: enc}, nil
}

func (c *TokenCounter) Count(text string) int {
	return len(c.enc.EncodeOrdinary(text))
}

// NewCounter builds the counter for a configured unit.
func NewCounter(unit, encoding string) (Counter, error) {
	switch unit {
	case UnitRune:
		return RuneCounter{}, nil
	case UnitWord:
		return WordCounter{}, nil
	case UnitToken:
		return NewTokenCounter(encoding)
	default:
		return nil, fmt.Errorf("unknown chunk unit %q (want %s, %s or %s)", unit, UnitRune, UnitWord, UnitToken)
	}
}

func isWordLike(seg string) bool {
	for _, r := range seg {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
