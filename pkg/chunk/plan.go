package chunk

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used by CountTokens.
const DefaultEncoding = "o200k_base"

// Options controls how a document is split before extraction.
type Options struct {
	Enabled       bool
	TargetTokens  int `validate:"gt=0"`
	OverlapTokens int `validate:"gte=0,ltfield=TargetTokens"`
}

// Plan returns the chunks to extract for text. With chunking disabled the
// whole text is a single chunk.
func Plan(text string, opts Options) ([]string, error) {
	if !opts.Enabled {
		if strings.TrimSpace(text) == "" {
			return []string{}, nil
		}
		return []string{text}, nil
	}
	return Segment(text, opts.TargetTokens, opts.OverlapTokens)
}

// CountTokens returns the exact token count of text under the named
// tiktoken encoding. It is used for diagnostics only; segmentation relies
// on EstimateTokens.
func CountTokens(text, encoding string) (int, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return 0, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}
	return len(enc.Encode(text, nil, nil)), nil
}
