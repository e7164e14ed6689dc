// Package karma — detector.go recognizes the reply emojis that act as
// implicit +1 grants. The platform SDK delivers no raw reaction events, so a
// reply whose whole text is one of these emojis is the reaction equivalent.
package karma

import "strings"

// ReactionEmojis is the fixed set of recognized grant emojis.
var ReactionEmojis = []string{"👍", "❤️", "🎉", "🔥", "👏"}

// ReactionEmoji reports whether text is exactly one recognized emoji,
// ignoring surrounding whitespace, and returns it.
func ReactionEmoji(text string) (string, bool) {
	cleaned := strings.TrimSpace(text)
	for _, e := range ReactionEmojis {
		if cleaned == e {
			return e, true
		}
	}
	return "", false
}
