package chunk

import (
	"fmt"
	"sort"
	"sync"
)

// Collector accumulates scanned pages of one message.
// The first chunk seen for an index is kept.
type Collector struct {
	mu     sync.Mutex
	total  int
	chunks map[int]Chunk
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{chunks: make(map[int]Chunk)}
}

// Add records a chunk. added is false for an index that was already seen.
// A chunk disagreeing with the page count of earlier chunks is rejected
// and leaves the collected state untouched.
func (c *Collector) Add(ch Chunk) (added bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch.TotalPages < 1 || ch.Index < 1 || ch.Index > ch.TotalPages {
		return false, fmt.Errorf("%w: page %d of %d", ErrInconsistentTransport, ch.Index, ch.TotalPages)
	}
	if c.total != 0 && ch.TotalPages != c.total {
		return false, fmt.Errorf("%w: page reports %d pages, expected %d", ErrInconsistentTransport, ch.TotalPages, c.total)
	}
	if _, seen := c.chunks[ch.Index]; seen {
		return false, nil
	}
	c.total = ch.TotalPages
	c.chunks[ch.Index] = ch
	return true, nil
}

// Seen returns the number of distinct pages collected
func (c *Collector) Seen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chunks)
}

// Total returns the announced page count, 0 before the first page
func (c *Collector) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Complete reports whether every page has been collected
func (c *Collector) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total > 0 && len(c.chunks) == c.total
}

// Missing returns the sorted indices not yet collected
func (c *Collector) Missing() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var missing []int
	for i := 1; i <= c.total; i++ {
		if _, ok := c.chunks[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// Chunks returns the collected chunks ordered by index
func (c *Collector) Chunks() []Chunk {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Chunk, 0, len(c.chunks))
	for _, ch := range c.chunks {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Decode reassembles the payload. Fails with ErrIncompleteTransport until complete.
func (c *Collector) Decode() (string, error) {
	return Decode(c.Chunks())
}
