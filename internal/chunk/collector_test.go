package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	chunks, err := Encode("abcdefgh", 3)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	c := NewCollector()
	assert.Equal(t, 0, c.Total())
	assert.False(t, c.Complete())

	added, err := c.Add(chunks[2])
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 3, c.Total())
	assert.Equal(t, []int{1, 2}, c.Missing())

	_, err = c.Decode()
	assert.ErrorIs(t, err, ErrIncompleteTransport)

	added, err = c.Add(Chunk{Index: 3, TotalPages: 3, Fragment: "zz"})
	require.NoError(t, err)
	assert.False(t, added, "duplicate index must not replace the first page")

	_, err = c.Add(Chunk{Index: 1, TotalPages: 4, Fragment: "abc"})
	assert.ErrorIs(t, err, ErrInconsistentTransport)
	assert.Equal(t, 1, c.Seen())

	for _, ch := range chunks[:2] {
		added, err = c.Add(ch)
		require.NoError(t, err)
		assert.True(t, added)
	}
	assert.True(t, c.Complete())
	assert.Empty(t, c.Missing())

	payload, err := c.Decode()
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", payload)
}
