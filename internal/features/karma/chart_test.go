package karma

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChart(t *testing.T) {
	entries := []LeaderboardEntry{
		{UserID: 1, Points: 100},
		{UserID: 2, Points: 50},
		{UserID: 3, Points: 1},
		{UserID: 4, Points: -5},
	}
	names := map[int64]string{1: "alice", 2: "bob", 3: "carol", 4: "dave"}
	chart := RenderChart(entries, func(id int64) string { return names[id] })

	lines := strings.Split(strings.TrimRight(chart, "\n"), "\n")
	require.Len(t, lines, 4)

	// The leader gets the full bar, half the points gets half the bar.
	assert.Equal(t, chartBarWidth, strings.Count(lines[0], "█"))
	assert.Equal(t, chartBarWidth/2, strings.Count(lines[1], "█"))
	// Small positive totals still render at least one block.
	assert.Equal(t, 1, strings.Count(lines[2], "█"))
	// Negative totals render no bar but keep the numeric value.
	assert.Zero(t, strings.Count(lines[3], "█"))
	assert.Contains(t, lines[3], "-5")

	assert.Contains(t, lines[0], "alice")
	assert.Contains(t, lines[0], "100")
}

func TestRenderChartTruncatesLongNames(t *testing.T) {
	entries := []LeaderboardEntry{{UserID: 1, Points: 10}}
	chart := RenderChart(entries, func(int64) string { return "extremely-long-display-name" })
	assert.Contains(t, chart, "…")
	assert.NotContains(t, chart, "extremely-long-display-name")
}

func TestRenderChartEmpty(t *testing.T) {
	assert.Empty(t, RenderChart(nil, func(int64) string { return "" }))
}
