package chunk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Page type tags
const (
	TypeColdSigningRequest = "CSR"
	TypeColdSigningResult  = "CSTX"
)

// FormatPage renders a chunk as the text carried by one QR symbol:
// {"<type>":"<fragment>","p":<index>,"n":<total>}
func FormatPage(pageType string, c Chunk) (string, error) {
	page := map[string]any{
		pageType: c.Fragment,
		"p":      c.Index,
		"n":      c.TotalPages,
	}
	data, err := json.Marshal(page)
	if err != nil {
		return "", fmt.Errorf("failed to marshal page: %w", err)
	}
	return string(data), nil
}

// FormatPages renders all chunks of a message
func FormatPages(pageType string, chunks []Chunk) ([]string, error) {
	pages := make([]string, 0, len(chunks))
	for _, c := range chunks {
		p, err := FormatPage(pageType, c)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// ParsePage parses one page of the given type. Missing "p"/"n" fields are
// read as a single-page message.
func ParsePage(pageType, text string) (Chunk, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return Chunk{}, fmt.Errorf("failed to parse page: %w", err)
	}

	fragRaw, ok := raw[pageType]
	if !ok {
		return Chunk{}, fmt.Errorf("page does not carry %s data", pageType)
	}

	c := Chunk{Index: 1, TotalPages: 1}
	if err := json.Unmarshal(fragRaw, &c.Fragment); err != nil {
		return Chunk{}, fmt.Errorf("invalid %s fragment: %w", pageType, err)
	}
	if p, ok := raw["p"]; ok {
		if err := json.Unmarshal(p, &c.Index); err != nil {
			return Chunk{}, fmt.Errorf("invalid page index: %w", err)
		}
	}
	if n, ok := raw["n"]; ok {
		if err := json.Unmarshal(n, &c.TotalPages); err != nil {
			return Chunk{}, fmt.Errorf("invalid page count: %w", err)
		}
	}
	if c.TotalPages < 1 || c.Index < 1 || c.Index > c.TotalPages {
		return Chunk{}, fmt.Errorf("%w: page %d of %d", ErrInconsistentTransport, c.Index, c.TotalPages)
	}
	return c, nil
}

// ParsePages parses a complete set of page texts
func ParsePages(pageType string, texts []string) ([]Chunk, error) {
	chunks := make([]Chunk, 0, len(texts))
	for _, t := range texts {
		c, err := ParsePage(pageType, t)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}
