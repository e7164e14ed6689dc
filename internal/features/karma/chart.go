// Package karma — chart.go renders the karma distribution as a monospace
// bar chart for the graph command.
package karma

import (
	"fmt"
	"strings"

	"github.com/YTstyo/Dis-karm/internal/common"
)

// chartBarWidth is the width, in blocks, of the longest bar.
const chartBarWidth = 20

// chartNameWidth caps the label column so bars stay aligned.
const chartNameWidth = 12

// RenderChart builds a text bar chart from leaderboard entries. Labels come
// from nameOf (user id -> display name). Negative totals render as an empty
// bar; scaling follows the largest positive total.
func RenderChart(entries []LeaderboardEntry, nameOf func(int64) string) string {
	if len(entries) == 0 {
		return ""
	}

	max := 0
	for _, e := range entries {
		if e.Points > max {
			max = e.Points
		}
	}

	var sb strings.Builder
	for _, e := range entries {
		name := common.Truncate(nameOf(e.UserID), chartNameWidth)
		bar := 0
		if max > 0 && e.Points > 0 {
			bar = e.Points * chartBarWidth / max
			if bar == 0 {
				bar = 1
			}
		}
		sb.WriteString(fmt.Sprintf("%-*s %s %d\n",
			chartNameWidth, name, strings.Repeat("█", bar), e.Points))
	}
	return sb.String()
}
