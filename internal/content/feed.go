package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedSource reads records from an RSS or Atom feed. Item categories of the form
// "key:value" carry the radar tags, e.g. "type:tech", "ring:trial".
type FeedSource struct {
	name   string
	url    string
	parser *gofeed.Parser
}

func NewFeedSource(name, feedURL string) *FeedSource {
	return &FeedSource{name: name, url: feedURL, parser: gofeed.NewParser()}
}

func (f *FeedSource) Name() string { return f.name }

func (f *FeedSource) Fetch(ctx context.Context) ([]Record, error) {
	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", f.name, err)
	}
	return recordsFromFeed(f.name, feed, time.Now()), nil
}

func recordsFromFeed(source string, feed *gofeed.Feed, now time.Time) []Record {
	records := make([]Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		var pub time.Time
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}
		desc = stripHTML(desc)

		rec := Record{
			Slug:        slugFromLink(item.Link),
			Title:       item.Title,
			Date:        pub,
			Description: desc,
			Excerpt:     truncate(desc, excerptLength),
			Source:      source,
			FetchedAt:   now,
		}
		for _, c := range item.Categories {
			applyCategory(&rec, c)
		}
		records = append(records, rec)
	}
	return records
}

func applyCategory(rec *Record, category string) {
	key, value, ok := strings.Cut(category, ":")
	if !ok {
		return
	}
	switch strings.TrimSpace(strings.ToLower(key)) {
	case "type":
		rec.Type = strings.TrimSpace(value)
	case "quadrant":
		rec.Quadrant = strings.TrimSpace(value)
	case "ring":
		rec.Ring = strings.TrimSpace(value)
	case "moved":
		rec.Moved = strings.TrimSpace(value)
	}
}

// slugFromLink keeps the path of an absolute link so entries point back into the site.
func slugFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return link
	}
	return u.Path
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
