package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_StableAndDistinct(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Hash("<b>hi</b>"), Hash("<b>hi</b>"))
	assert.NotEqual(t, Hash("a"), Hash("b"))
	assert.Len(t, Hash(""), 64)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	// Multi-byte runes are never split.
	assert.Equal(t, "héł...", Truncate("héłło", 3))
}

func TestEscape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `a\tb\nc\rd`, Escape("a\tb\nc\rd"))
	assert.Equal(t, "plain", Escape("plain"))
}
