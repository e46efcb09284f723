// Package radar classifies tagged articles into the quadrant, ring and movement
// slots of a technology radar and builds the configuration handed to the chart.
package radar

import "github.com/cgrotz/cgrotz.github.io/internal/content"

// Quadrant indexes one of the four thematic buckets.
type Quadrant int

const (
	Languages Quadrant = iota
	Infrastructure
	Frameworks
	DataManagement
)

// Ring indexes one of the four recommendation levels, most recommended first.
type Ring int

const (
	Adopt Ring = iota
	Trial
	Assess
	Hold
)

// Movement is the direction an entry moved since the previous assessment.
type Movement int

const (
	MovedDown Movement = -1
	Unchanged Movement = 0
	MovedUp   Movement = 1
)

// table resolves a tag to its slot, falling back to def for anything it does not name.
type table[T any] struct {
	values map[string]T
	def    T
}

func (t table[T]) lookup(tag string) (T, bool) {
	if v, ok := t.values[tag]; ok {
		return v, true
	}
	return t.def, false
}

// Unrecognized or missing quadrant and ring tags land on index 0, which cannot be
// told apart from an explicit "language" or "adopt". Inspect reports these cases.
var (
	quadrants = table[Quadrant]{
		values: map[string]Quadrant{
			"language":        Languages,
			"infrastructure":  Infrastructure,
			"framework":       Frameworks,
			"data_management": DataManagement,
		},
		def: Languages,
	}

	rings = table[Ring]{
		values: map[string]Ring{
			"adopt":  Adopt,
			"trial":  Trial,
			"assess": Assess,
			"hold":   Hold,
		},
		def: Adopt,
	}

	movements = table[Movement]{
		values: map[string]Movement{
			"up":   MovedUp,
			"down": MovedDown,
		},
		def: Unchanged,
	}
)

// Entry is one blip on the radar, in the shape the chart script consumes.
type Entry struct {
	Label    string   `json:"label"`
	Quadrant Quadrant `json:"quadrant"`
	Ring     Ring     `json:"ring"`
	Moved    Movement `json:"moved"`
	Active   bool     `json:"active"`
	Link     string   `json:"link"`
}

// Classify maps a record to its entry. It never fails: tags it does not know
// resolve to the table defaults.
func Classify(r content.Record) Entry {
	q, _ := quadrants.lookup(r.Quadrant)
	ring, _ := rings.lookup(r.Ring)
	moved, _ := movements.lookup(r.Moved)

	label := r.Title
	if label == "" {
		label = r.Slug
	}

	return Entry{
		Label:    label,
		Quadrant: q,
		Ring:     ring,
		Moved:    moved,
		Active:   true,
		Link:     r.Slug,
	}
}

// Entries classifies records one by one, keeping their order and count.
func Entries(records []content.Record) []Entry {
	entries := make([]Entry, len(records))
	for i, r := range records {
		entries[i] = Classify(r)
	}
	return entries
}

// Diagnostics lists which tags of a record fell back to a default slot.
type Diagnostics struct {
	Slug            string
	QuadrantDefault bool
	RingDefault     bool
	MovedUnknown    bool
}

// Defaulted reports whether the entry's quadrant or ring came from a fallback.
func (d Diagnostics) Defaulted() bool {
	return d.QuadrantDefault || d.RingDefault
}

// Inspect reports the fallbacks Classify applies to r. An empty moved tag is the
// normal "unchanged" state and is not flagged.
func Inspect(r content.Record) Diagnostics {
	_, qok := quadrants.lookup(r.Quadrant)
	_, rok := rings.lookup(r.Ring)
	_, mok := movements.lookup(r.Moved)
	return Diagnostics{
		Slug:            r.Slug,
		QuadrantDefault: !qok,
		RingDefault:     !rok,
		MovedUnknown:    !mok && r.Moved != "",
	}
}
