package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/cgrotz/cgrotz.github.io/internal/radar"
)

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func movedMarker(m radar.Movement) string {
	switch m {
	case radar.MovedUp:
		return movedUpStyle.Render("▲")
	case radar.MovedDown:
		return movedDownStyle.Render("▼")
	default:
		return "•"
	}
}

func renderListItem(it item, layout radar.Layout, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(it.entry.Label, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(it.entry.Label, width-4))
	}

	ring := layout.RingSpecFor(it.entry.Ring)
	meta := "  " + movedMarker(it.entry.Moved) + " " + ringBadge(ring.Name, ring.Color) + " " +
		itemMetaStyle.Render(layout.QuadrantName(it.entry.Quadrant))

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(items []item, layout radar.Layout, cursor int, height int, width int) string {
	if len(items) == 0 {
		return lipglossCenter("No entries on the radar", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(items) {
		end = len(items)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(items[i], layout, i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
