// Package karma — levels.go maps a points total to a discrete level.
package karma

// NumLevels is the number of defined karma levels.
const NumLevels = 5

// MaxLevel is the highest reachable level index.
const MaxLevel = NumLevels - 1

// DefaultLevelInterval is the points-per-level step when none is configured.
const DefaultLevelInterval = 50

// LevelEmojis decorate each level in replies, lowest first.
var LevelEmojis = [NumLevels]string{"⭐", "🌟", "✨", "💫", "☄️"}

// LevelFor returns min(points/interval, MaxLevel). Negative or zero points
// map to level 0. Pure and total; a non-positive interval falls back to the
// default.
func LevelFor(points, interval int) int {
	if interval <= 0 {
		interval = DefaultLevelInterval
	}
	if points <= 0 {
		return 0
	}
	level := points / interval
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// LevelEmoji returns the emoji for a level, clamping out-of-range values.
func LevelEmoji(level int) string {
	if level < 0 {
		level = 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return LevelEmojis[level]
}
