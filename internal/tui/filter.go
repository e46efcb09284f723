package tui

import (
	"github.com/cgrotz/cgrotz.github.io/internal/radar"
	"github.com/charmbracelet/lipgloss"
)

// quadrantBar selects which quadrant the list shows; -1 shows all of them.
type quadrantBar struct {
	names  []string
	active int
}

func newQuadrantBar(layout radar.Layout) quadrantBar {
	names := make([]string, len(layout.Quadrants))
	for i, q := range layout.Quadrants {
		names[i] = q.Name
	}
	return quadrantBar{names: names, active: -1}
}

func (f *quadrantBar) next() {
	f.active++
	if f.active >= len(f.names) {
		f.active = -1
	}
}

func (f *quadrantBar) prev() {
	f.active--
	if f.active < -1 {
		f.active = len(f.names) - 1
	}
}

func (f *quadrantBar) selectIndex(i int) {
	if i >= -1 && i < len(f.names) {
		f.active = i
	}
}

func (f *quadrantBar) matches(e radar.Entry) bool {
	return f.active < 0 || int(e.Quadrant) == f.active
}

func (f *quadrantBar) activeLabel() string {
	if f.active < 0 {
		return "All"
	}
	return f.names[f.active]
}

func (f *quadrantBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	style := tabInactiveStyle
	if f.active < 0 {
		style = tabActiveStyle
	}
	parts := []string{style.Render("All")}

	for i, name := range f.names {
		style := tabInactiveStyle
		if i == f.active {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(name))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
