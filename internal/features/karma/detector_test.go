package karma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReactionEmoji(t *testing.T) {
	for _, e := range ReactionEmojis {
		got, ok := ReactionEmoji(e)
		assert.True(t, ok, "emoji %q not recognized", e)
		assert.Equal(t, e, got)
	}

	// Surrounding whitespace is tolerated.
	got, ok := ReactionEmoji("  🔥 ")
	assert.True(t, ok)
	assert.Equal(t, "🔥", got)

	// Anything beyond the bare emoji is not a grant.
	for _, text := range []string{"", "thanks 👍", "👍👍", "🚀", "nice"} {
		_, ok := ReactionEmoji(text)
		assert.False(t, ok, "unexpected match for %q", text)
	}
}
