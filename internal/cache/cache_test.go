package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cgrotz/cgrotz.github.io/internal/content"
)

func testDB(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecords() []content.Record {
	now := time.Now()
	return []content.Record{
		{Slug: "/rust/", Source: "site", Title: "Rust", Type: "tech", Quadrant: "language", Ring: "adopt", Date: now.Add(-1 * time.Hour), FetchedAt: now},
		{Slug: "/legacy-queue/", Source: "feed", Type: "tech", Quadrant: "infrastructure", Ring: "hold", Moved: "down", Date: now.Add(-2 * time.Hour), FetchedAt: now},
		{Slug: "/holiday/", Source: "site", Title: "Holiday", Type: "blog", Description: "about search", Date: now.Add(-48 * time.Hour), FetchedAt: now.Add(-48 * time.Hour)},
	}
}

func slugs(records []content.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Slug
	}
	return out
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetRecords(QueryOpts{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Slug != "/rust/" {
		t.Errorf("expected newest first, got %s", got[0].Slug)
	}
	if got[1].Moved != "down" || got[1].Title != "" {
		t.Errorf("tags not round-tripped: %+v", got[1])
	}
}

func TestUpsertUpdatesTags(t *testing.T) {
	db := testDB(t)
	records := sampleRecords()

	if err := db.UpsertRecords(records); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	records[0].Ring = "hold"
	records[0].Moved = "down"
	if err := db.UpsertRecords(records[:1]); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := db.GetRecords(QueryOpts{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records after upsert, got %d", len(got))
	}
	if got[0].Ring != "hold" || got[0].Moved != "down" {
		t.Errorf("expected updated tags, got %+v", got[0])
	}
}

func TestEqualDatesKeepInsertionOrder(t *testing.T) {
	db := testDB(t)
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	records := []content.Record{
		{Slug: "/b/", Source: "site", Type: "tech", Date: date, FetchedAt: now},
		{Slug: "/a/", Source: "site", Type: "tech", Date: date, FetchedAt: now},
		{Slug: "/c/", Source: "site", Type: "tech", Date: date, FetchedAt: now},
	}
	if err := db.UpsertRecords(records); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetRecords(QueryOpts{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []string{"/b/", "/a/", "/c/"}
	for i, s := range slugs(got) {
		if s != want[i] {
			t.Errorf("position %d: got %s, want %s", i, s, want[i])
		}
	}
}

func TestQueryType(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetRecords(QueryOpts{Type: "tech"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 tech records, got %d", len(got))
	}
	for _, r := range got {
		if r.Type != "tech" {
			t.Errorf("expected type tech, got %s", r.Type)
		}
	}
}

func TestQuerySinceAndSources(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetRecords(QueryOpts{Since: time.Now().Add(-3 * time.Hour)})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 records within 3h, got %d", len(got))
	}

	got, err = db.GetRecords(QueryOpts{Sources: []string{"site"}})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 site records, got %d", len(got))
	}
}

func TestQuerySearch(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	tests := []struct {
		term string
		want string
	}{
		{"search", "/holiday/"},
		{"legacy", "/legacy-queue/"},
		{"Rust", "/rust/"},
	}
	for _, tt := range tests {
		got, err := db.GetRecords(QueryOpts{Search: tt.term})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(got) != 1 || got[0].Slug != tt.want {
			t.Errorf("Search(%q) = %v, want [%s]", tt.term, slugs(got), tt.want)
		}
	}
}

func TestQueryLimit(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetRecords(QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 record with limit, got %d", len(got))
	}
}

func TestQueryWithoutLimitReturnsEverything(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	records := make([]content.Record, 1200)
	for i := range records {
		records[i] = content.Record{
			Slug: fmt.Sprintf("/post-%d/", i), Source: "site", Type: "tech",
			Date: now.Add(-time.Duration(i) * time.Minute), FetchedAt: now,
		}
	}
	if err := db.UpsertRecords(records); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetRecords(QueryOpts{Type: "tech"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1200 {
		t.Errorf("expected all 1200 records, got %d", len(got))
	}
}

func TestReplaceSource(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	now := time.Now()
	renamed := []content.Record{
		{Slug: "/rust-lang/", Source: "site", Title: "Rust", Type: "tech", Quadrant: "language", Ring: "adopt", Date: now.Add(-1 * time.Hour), FetchedAt: now},
	}
	removed, err := db.ReplaceSource("site", renamed)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	// /rust/ and /holiday/ are gone from "site"; the feed row is untouched.
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	got, err := db.GetRecords(QueryOpts{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []string{"/rust-lang/", "/legacy-queue/"}
	if fmt.Sprint(slugs(got)) != fmt.Sprint(want) {
		t.Errorf("after replace got %v, want %v", slugs(got), want)
	}

	// A second replace with the same batch is a no-op.
	removed, err = db.ReplaceSource("site", renamed)
	if err != nil {
		t.Fatalf("replace again: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected 0 removed on repeat, got %d", removed)
	}

	removed, err = db.ReplaceSource("site", nil)
	if err != nil {
		t.Fatalf("replace with empty batch: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected empty batch to remove 1, got %d", removed)
	}
}

func TestPruneSkipsExemptSources(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// /holiday/ is stale but belongs to the exempt "site" source.
	deleted, err := db.Prune(24*time.Hour, "site")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 pruned, got %d", deleted)
	}
}

func TestNeedsRefresh(t *testing.T) {
	db := testDB(t)

	if !db.NeedsRefresh(1 * time.Hour) {
		t.Error("expected NeedsRefresh=true when no last_refresh set")
	}

	if err := db.SetLastRefresh(); err != nil {
		t.Fatalf("SetLastRefresh: %v", err)
	}

	if db.NeedsRefresh(1 * time.Hour) {
		t.Error("expected NeedsRefresh=false right after SetLastRefresh")
	}

	if !db.NeedsRefresh(0) {
		t.Error("expected NeedsRefresh=true with zero interval")
	}
}

func TestEmptyDB(t *testing.T) {
	db := testDB(t)

	got, err := db.GetRecords(QueryOpts{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 records in empty db, got %d", len(got))
	}
}

func TestPruneDeletesStaleRecords(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// /holiday/ was last fetched 48h ago.
	deleted, err := db.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned, got %d", deleted)
	}

	got, err := db.GetRecords(QueryOpts{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 remaining records, got %d", len(got))
	}
}

func TestPruneNothingToDelete(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	deleted, err := db.Prune(365 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 pruned, got %d", deleted)
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.UpsertRecords(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	count, size, err := db.Stats(dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
	if size == 0 {
		t.Error("expected non-zero db size")
	}
}

func TestOpenCreatesDir(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "deep", "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("opening db in nested dir: %v", err)
	}
	db.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}
