package content

import (
	"context"
	"time"
)

// DefaultType is the content type the radar page is built from.
const DefaultType = "tech"

// Record is one article as supplied by a content source. Tag fields carry the raw
// frontmatter or category strings; any of them may be empty.
type Record struct {
	Slug        string
	Title       string
	Date        time.Time
	Description string
	Excerpt     string
	Type        string
	Quadrant    string
	Ring        string
	Moved       string
	Source      string
	FetchedAt   time.Time
}

// Source supplies records.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Record, error)
}

// Complete is implemented by sources whose Fetch returns every record they hold,
// so a record missing from a fetch has been deleted or renamed. Feeds only return
// a recent window and do not implement it.
type Complete interface {
	Complete() bool
}

// IsComplete reports whether s returns its whole corpus on every fetch.
func IsComplete(s Source) bool {
	c, ok := s.(Complete)
	return ok && c.Complete()
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"January 02, 2006",
	"January 2, 2006",
}

// ParseDate accepts the date formats used in frontmatter and feeds. It returns the
// zero time when nothing matches.
func ParseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
