package chunk

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/OFFIS-RIT/findetective/pkg/logger"
)

// ErrInvalidChunkConfig is returned when the target size or overlap cannot
// produce a valid segmentation.
var ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

// bytesPerToken is the heuristic ratio used by EstimateTokens.
const bytesPerToken = 4

var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)

// EstimateTokens approximates the token count of text as ceil(len/4).
func EstimateTokens(text string) int {
	return (len(text) + bytesPerToken - 1) / bytesPerToken
}

type unit struct {
	text string
	// newParagraph marks the first unit of a paragraph; it is joined to the
	// previous unit with a blank line instead of a space.
	newParagraph bool
}

// Segment splits text into chunks of roughly targetSize estimated tokens.
//
// Text that already fits is returned unchanged as a single chunk. Larger
// text is split on paragraph boundaries, falling back to sentence
// boundaries for paragraphs over budget; a single sentence over budget
// becomes its own chunk. Every chunk after the first starts with a
// word-aligned tail of up to overlap tokens from the previous chunk.
func Segment(text string, targetSize, overlap int) ([]string, error) {
	if targetSize <= 0 {
		return nil, fmt.Errorf("%w: target size must be positive, got %d", ErrInvalidChunkConfig, targetSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidChunkConfig, overlap)
	}
	if overlap >= targetSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than target size %d", ErrInvalidChunkConfig, overlap, targetSize)
	}

	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	if EstimateTokens(text) <= targetSize {
		return []string{text}, nil
	}

	fresh := pack(splitUnits(text, targetSize), targetSize)

	chunks := make([]string, len(fresh))
	for i, body := range fresh {
		if i == 0 || overlap == 0 {
			chunks[i] = body
			continue
		}
		if tail := overlapTail(fresh[i-1], overlap*bytesPerToken); tail != "" {
			chunks[i] = tail + " " + body
		} else {
			chunks[i] = body
		}
	}

	logger.Debug("[Chunk] Segmented text", "bytes", len(text), "chunks", len(chunks), "target", targetSize, "overlap", overlap)
	return chunks, nil
}

func splitUnits(text string, targetSize int) []unit {
	var units []unit
	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if EstimateTokens(para) <= targetSize {
			units = append(units, unit{text: para, newParagraph: true})
			continue
		}

		for i, sentence := range splitSentences(para) {
			units = append(units, unit{text: sentence, newParagraph: i == 0})
		}
	}
	return units
}

func pack(units []unit, targetSize int) []string {
	var chunks []string
	var current strings.Builder

	for _, u := range units {
		if current.Len() == 0 {
			current.WriteString(u.text)
			continue
		}

		sep := " "
		if u.newParagraph {
			sep = "\n\n"
		}
		if EstimateTokens(current.String()+sep+u.text) <= targetSize {
			current.WriteString(sep)
			current.WriteString(u.text)
			continue
		}

		chunks = append(chunks, current.String())
		current.Reset()
		current.WriteString(u.text)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// overlapTail returns the trailing whole words of s that fit into maxBytes.
func overlapTail(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return strings.TrimSpace(s)
	}

	start := len(s) - maxBytes
	// Starting mid-word: skip forward to the next word boundary.
	if !unicode.IsSpace(rune(s[start-1])) {
		idx := strings.IndexFunc(s[start:], unicode.IsSpace)
		if idx < 0 {
			return ""
		}
		start += idx
	}
	return strings.TrimSpace(s[start:])
}

// splitSentences splits a paragraph into sentences. Line breaks inside the
// paragraph are folded into spaces.
func splitSentences(paragraph string) []string {
	var sentences []string
	for _, line := range strings.Split(paragraph, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sentences = appendSentences(sentences, splitLineIntoSentences(line))
	}
	return sentences
}

// appendSentences merges a line's fragments into sentences, continuing an
// unterminated sentence from the previous line.
func appendSentences(sentences, fragments []string) []string {
	for _, frag := range fragments {
		n := len(sentences)
		if n > 0 && !endsSentence(sentences[n-1]) {
			sentences[n-1] += " " + frag
			continue
		}
		sentences = append(sentences, frag)
	}
	return sentences
}

func endsSentence(s string) bool {
	s = strings.TrimRight(s, "\"')]}")
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// splitLineIntoSentences breaks a single line on terminal punctuation.
// A period directly after a digit and followed by a space ("1. ") is a
// list marker, not a boundary.
func splitLineIntoSentences(line string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		current.WriteByte(line[i])

		if line[i] != '.' && line[i] != '!' && line[i] != '?' {
			continue
		}
		if i > 0 && unicode.IsDigit(rune(line[i-1])) && i+1 < len(line) && line[i+1] == ' ' {
			continue
		}

		j := i + 1
		for j < len(line) && (line[j] == '.' || line[j] == '!' || line[j] == '?') {
			current.WriteByte(line[j])
			j++
		}
		for j < len(line) && strings.IndexByte("\"')]}", line[j]) >= 0 {
			current.WriteByte(line[j])
			j++
		}
		// Decimal numbers and abbreviations without a following space stay intact.
		if j < len(line) && !unicode.IsSpace(rune(line[j])) {
			i = j - 1
			continue
		}

		if sentence := strings.TrimSpace(current.String()); sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
		i = j - 1
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		sentences = append(sentences, remaining)
	}
	return sentences
}
