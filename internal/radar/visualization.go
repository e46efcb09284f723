package radar

import (
	"slices"

	"github.com/cgrotz/cgrotz.github.io/internal/content"
)

// Colors are the chart background, grid and inactive-entry colors.
type Colors struct {
	Background string `yaml:"background" json:"background" validate:"required,hexcolor"`
	Grid       string `yaml:"grid" json:"grid" validate:"required,hexcolor"`
	Inactive   string `yaml:"inactive" json:"inactive" validate:"required,hexcolor"`
}

// QuadrantSpec names one quadrant of the chart.
type QuadrantSpec struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

// RingSpec names one ring and the color it is drawn in.
type RingSpec struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Color string `yaml:"color" json:"color" validate:"required,hexcolor"`
}

// Layout is the static part of the chart configuration. Quadrants and Rings are
// indexed by Quadrant and Ring.
type Layout struct {
	Width       int            `yaml:"width" validate:"gt=0"`
	Height      int            `yaml:"height" validate:"gt=0"`
	Colors      Colors         `yaml:"colors"`
	Quadrants   []QuadrantSpec `yaml:"quadrants" validate:"len=4,dive"`
	Rings       []RingSpec     `yaml:"rings" validate:"len=4,dive"`
	PrintLayout bool           `yaml:"print_layout"`
}

// DefaultLayout returns the chart settings the site's radar page ships with.
func DefaultLayout() Layout {
	return Layout{
		Width:  1450,
		Height: 1000,
		Colors: Colors{
			Background: "#fff",
			Grid:       "#bbb",
			Inactive:   "#ddd",
		},
		Quadrants: []QuadrantSpec{
			{Name: "Languages"},
			{Name: "Infrastructure"},
			{Name: "Frameworks"},
			{Name: "Data Management"},
		},
		Rings: []RingSpec{
			{Name: "ADOPT", Color: "#93c47d"},
			{Name: "TRIAL", Color: "#b7e1cd"},
			{Name: "ASSESS", Color: "#fce8b2"},
			{Name: "HOLD", Color: "#f4c7c3"},
		},
		PrintLayout: true,
	}
}

// QuadrantName returns the configured name for q, or "" when out of range.
func (l Layout) QuadrantName(q Quadrant) string {
	if int(q) < 0 || int(q) >= len(l.Quadrants) {
		return ""
	}
	return l.Quadrants[q].Name
}

// RingSpecFor returns the configured ring for r, or the zero value when out of range.
func (l Layout) RingSpecFor(r Ring) RingSpec {
	if int(r) < 0 || int(r) >= len(l.Rings) {
		return RingSpec{}
	}
	return l.Rings[r]
}

// Visualization is the full argument passed to radar_visualization.
type Visualization struct {
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Colors      Colors         `json:"colors"`
	Quadrants   []QuadrantSpec `json:"quadrants"`
	Rings       []RingSpec     `json:"rings"`
	PrintLayout bool           `json:"print_layout"`
	Entries     []Entry        `json:"entries"`
}

// NewVisualization assembles a fresh configuration. The layout slices are copied
// so the result shares no state with the caller.
func NewVisualization(l Layout, entries []Entry) Visualization {
	if entries == nil {
		entries = []Entry{}
	}
	return Visualization{
		Width:       l.Width,
		Height:      l.Height,
		Colors:      l.Colors,
		Quadrants:   slices.Clone(l.Quadrants),
		Rings:       slices.Clone(l.Rings),
		PrintLayout: l.PrintLayout,
		Entries:     entries,
	}
}

// Build classifies records and wraps them in a Visualization.
func Build(l Layout, records []content.Record) Visualization {
	return NewVisualization(l, Entries(records))
}
