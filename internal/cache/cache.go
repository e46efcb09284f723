package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cgrotz/cgrotz.github.io/internal/content"
	_ "modernc.org/sqlite"
)

type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	c := &Cache{writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}

	// The read handle is opened after the schema exists so mode=ro never sees a missing file.
	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	c.readDB = readDB
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			slug        TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			title       TEXT NOT NULL DEFAULT '',
			date        DATETIME NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			excerpt     TEXT NOT NULL DEFAULT '',
			type        TEXT NOT NULL DEFAULT '',
			quadrant    TEXT NOT NULL DEFAULT '',
			ring        TEXT NOT NULL DEFAULT '',
			moved       TEXT NOT NULL DEFAULT '',
			fetched_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_records_date ON records(date DESC);
		CREATE INDEX IF NOT EXISTS idx_records_type ON records(type);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// UpsertRecords stores records keyed by slug. Tags are overwritten on conflict so
// a re-tagged post moves on the radar at the next sync.
func (c *Cache) UpsertRecords(records []content.Record) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsert(tx, records); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceSource makes records the exact cached contents of source: they are
// upserted and every other row of that source is deleted, in one transaction.
// It returns the number of rows removed.
func (c *Cache) ReplaceSource(source string, records []content.Record) (int64, error) {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := upsert(tx, records); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS keep_slugs (slug TEXT PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("creating slug set: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM keep_slugs`); err != nil {
		return 0, fmt.Errorf("clearing slug set: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO keep_slugs (slug) VALUES (?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.Exec(r.Slug); err != nil {
			return 0, fmt.Errorf("collecting slug %s: %w", r.Slug, err)
		}
	}

	res, err := tx.Exec(`DELETE FROM records WHERE source = ? AND slug NOT IN (SELECT slug FROM keep_slugs)`, source)
	if err != nil {
		return 0, fmt.Errorf("deleting removed records of %s: %w", source, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`DELETE FROM keep_slugs`); err != nil {
		return 0, fmt.Errorf("clearing slug set: %w", err)
	}
	return n, tx.Commit()
}

type preparer interface {
	Prepare(query string) (*sql.Stmt, error)
}

func upsert(tx preparer, records []content.Record) error {
	stmt, err := tx.Prepare(`
		INSERT INTO records (slug, source, title, date, description, excerpt, type, quadrant, ring, moved, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			source = excluded.source,
			title = excluded.title,
			date = excluded.date,
			description = excluded.description,
			excerpt = excluded.excerpt,
			type = excluded.type,
			quadrant = excluded.quadrant,
			ring = excluded.ring,
			moved = excluded.moved,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(r.Slug, r.Source, r.Title, r.Date.UTC(), r.Description, r.Excerpt,
			r.Type, r.Quadrant, r.Ring, r.Moved, r.FetchedAt.UTC())
		if err != nil {
			return fmt.Errorf("upserting record %s: %w", r.Slug, err)
		}
	}
	return nil
}

// GetRecords returns matching records newest first; records with the same date
// come back in the order they were first stored.
func (c *Cache) GetRecords(opts QueryOpts) ([]content.Record, error) {
	var (
		where []string
		args  []interface{}
	)

	if opts.Type != "" {
		where = append(where, "type = ?")
		args = append(args, opts.Type)
	}

	if !opts.Since.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, opts.Since.UTC())
	}

	if len(opts.Sources) > 0 {
		placeholders := make([]string, len(opts.Sources))
		for i, s := range opts.Sources {
			placeholders[i] = "?"
			args = append(args, s)
		}
		where = append(where, "source IN ("+strings.Join(placeholders, ",")+")") //nolint:gosec
	}

	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR slug LIKE ? OR description LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term, term)
	}

	query := "SELECT slug, source, title, date, description, excerpt, type, quadrant, ring, moved, fetched_at FROM records"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, rowid ASC"

	// Limit <= 0 returns every match; the radar never drops records.
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := c.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []content.Record
	for rows.Next() {
		var r content.Record
		if err := rows.Scan(&r.Slug, &r.Source, &r.Title, &r.Date, &r.Description, &r.Excerpt,
			&r.Type, &r.Quadrant, &r.Ring, &r.Moved, &r.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune deletes records that no sync has seen within olderThan. Rows of the
// exempt sources are kept; ReplaceSource already keeps those exact.
func (c *Cache) Prune(olderThan time.Duration, exempt ...string) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC()
	query := "DELETE FROM records WHERE fetched_at < ?"
	args := []interface{}{cutoff}
	if len(exempt) > 0 {
		placeholders := make([]string, len(exempt))
		for i, s := range exempt {
			placeholders[i] = "?"
			args = append(args, s)
		}
		query += " AND source NOT IN (" + strings.Join(placeholders, ",") + ")" //nolint:gosec
	}
	res, err := c.writeDB.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := c.writeDB.Exec("VACUUM"); err != nil {
			return n, fmt.Errorf("vacuum: %w", err)
		}
	}
	return n, nil
}

// Stats returns the record count and the size of the database file.
func (c *Cache) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting records: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, err
	}
	return count, info.Size(), nil
}

func (c *Cache) NeedsRefresh(interval time.Duration) bool {
	value, err := c.getMeta("last_refresh")
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return time.Since(t) >= interval
}

func (c *Cache) SetLastRefresh() error {
	return c.setMeta("last_refresh", time.Now().Format(time.RFC3339))
}

func (c *Cache) getMeta(key string) (string, error) {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	return value, err
}

func (c *Cache) setMeta(key, value string) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
