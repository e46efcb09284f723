package tui

import (
	"fmt"
	"strings"

	"github.com/cgrotz/cgrotz.github.io/internal/browser"
	"github.com/cgrotz/cgrotz.github.io/internal/radar"
	"github.com/charmbracelet/lipgloss"
)

func renderPreview(it *item, layout radar.Layout, baseURL string, width, height, scroll int) string {
	if it == nil {
		return lipglossCenter("Select an entry", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	ring := layout.RingSpecFor(it.entry.Ring)
	title := previewTitleStyle.Width(contentWidth).Render(it.entry.Label)
	meta := previewMetaStyle.Render(fmt.Sprintf("%s · %s · %s",
		layout.QuadrantName(it.entry.Quadrant), ring.Name, movementLabel(it.entry.Moved)))
	ringLine := ringBadge(ring.Name, ring.Color) + " " + itemMetaStyle.Render(relativeTime(it.record.Date))

	desc := it.record.Description
	if desc == "" {
		desc = it.record.Excerpt
	}
	if desc == "" {
		desc = "(No description available)"
	}

	body := previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))
	link := previewLinkStyle.Width(contentWidth).Render("Read more: " + browser.Resolve(baseURL, it.entry.Link))

	content := lipgloss.JoinVertical(lipgloss.Left, title, meta, ringLine, "", body, "", link)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func movementLabel(m radar.Movement) string {
	switch m {
	case radar.MovedUp:
		return "moved in"
	case radar.MovedDown:
		return "moved out"
	default:
		return "no change"
	}
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
