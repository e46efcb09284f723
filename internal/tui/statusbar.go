package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(entryCount int, filterLabel string, defaulted int, width int, searching bool, refreshing bool) string {
	left := fmt.Sprintf(" %d entries", entryCount)
	if filterLabel != "All" {
		left += " · " + filterLabel
	}
	if defaulted > 0 {
		left += " · " + lipgloss.NewStyle().Foreground(colorAccent).Render(fmt.Sprintf("%d untagged", defaulted))
	}

	right := " ←/→ quadrant  / search  o open  r refresh  ? help  q quit "

	if searching {
		right = " esc cancel  enter search "
	}
	if refreshing {
		left += " (refreshing...)"
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
