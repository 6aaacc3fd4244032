// Package chunk splits text payloads into pages small enough for a single QR
// symbol and reassembles them in any arrival order.
package chunk

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

var (
	// ErrIncompleteTransport is returned when a page of the message is missing
	ErrIncompleteTransport = errors.New("incomplete transport: pages missing")
	// ErrInconsistentTransport is returned when pages disagree on the page count
	ErrInconsistentTransport = errors.New("inconsistent transport: page count mismatch")
)

// Chunk is one page of a chunked message
type Chunk struct {
	Index      int    // 1-based
	TotalPages int
	Fragment   string
}

// Encode splits payload into contiguous fragments of at most maxFragmentBytes bytes.
// Fragments end on rune boundaries; a rune wider than the limit forms its own fragment.
func Encode(payload string, maxFragmentBytes int) ([]Chunk, error) {
	if maxFragmentBytes < 1 {
		return nil, fmt.Errorf("max fragment size must be positive, got %d", maxFragmentBytes)
	}

	fragments := make([]string, 0, len(payload)/maxFragmentBytes+1)
	rest := payload
	for len(rest) > maxFragmentBytes {
		cut := maxFragmentBytes
		for cut > 0 && !utf8.RuneStart(rest[cut]) {
			cut--
		}
		if cut == 0 {
			_, size := utf8.DecodeRuneInString(rest)
			cut = size
		}
		fragments = append(fragments, rest[:cut])
		rest = rest[cut:]
	}
	fragments = append(fragments, rest)

	chunks := make([]Chunk, len(fragments))
	for i, f := range fragments {
		chunks[i] = Chunk{Index: i + 1, TotalPages: len(fragments), Fragment: f}
	}
	return chunks, nil
}

// Decode reassembles the payload from chunks supplied in any order.
// For duplicated indices the first chunk seen wins.
func Decode(chunks []Chunk) (string, error) {
	if len(chunks) == 0 {
		return "", ErrIncompleteTransport
	}

	total := chunks[0].TotalPages
	if total < 1 {
		return "", fmt.Errorf("%w: total pages %d", ErrInconsistentTransport, total)
	}

	byIndex := make(map[int]Chunk, total)
	for _, c := range chunks {
		if c.TotalPages != total {
			return "", fmt.Errorf("%w: page %d reports %d pages, expected %d", ErrInconsistentTransport, c.Index, c.TotalPages, total)
		}
		if c.Index < 1 || c.Index > total {
			return "", fmt.Errorf("%w: page index %d outside 1..%d", ErrInconsistentTransport, c.Index, total)
		}
		if _, seen := byIndex[c.Index]; !seen {
			byIndex[c.Index] = c
		}
	}

	if len(byIndex) != total {
		return "", fmt.Errorf("%w: have %d of %d", ErrIncompleteTransport, len(byIndex), total)
	}

	ordered := make([]Chunk, 0, total)
	for _, c := range byIndex {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	size := 0
	for _, c := range ordered {
		size += len(c.Fragment)
	}
	buf := make([]byte, 0, size)
	for _, c := range ordered {
		buf = append(buf, c.Fragment...)
	}
	return string(buf), nil
}
