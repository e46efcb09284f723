package content

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const excerptLength = 140

// frontmatter mirrors the YAML header of a post.
type frontmatter struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Ring        string `yaml:"ring"`
	Quadrant    string `yaml:"quadrant"`
	Moved       string `yaml:"moved"`
}

// MarkdownSource reads posts from a directory of markdown files with YAML frontmatter.
type MarkdownSource struct {
	name   string
	root   string
	logger *zap.Logger
}

func NewMarkdownSource(name, root string, logger *zap.Logger) *MarkdownSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkdownSource{name: name, root: root, logger: logger}
}

func (s *MarkdownSource) Name() string { return s.name }

// Complete reports true: every post under root is read on each fetch.
func (s *MarkdownSource) Complete() bool { return true }

func (s *MarkdownSource) Fetch(ctx context.Context) ([]Record, error) {
	now := time.Now()
	var records []Record

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		rec, err := parsePost(rel, data)
		if err != nil {
			s.logger.Warn("skipping post", zap.String("path", path), zap.Error(err))
			return nil
		}
		rec.Source = s.name
		rec.FetchedAt = now
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.root, err)
	}
	return records, nil
}

func parsePost(rel string, data []byte) (Record, error) {
	header, body, err := splitFrontmatter(data)
	if err != nil {
		return Record{}, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return Record{}, fmt.Errorf("parsing frontmatter: %w", err)
	}

	return Record{
		Slug:        slugFor(rel),
		Title:       fm.Title,
		Date:        ParseDate(fm.Date),
		Description: fm.Description,
		Excerpt:     truncate(strings.Join(strings.Fields(string(body)), " "), excerptLength),
		Type:        fm.Type,
		Quadrant:    fm.Quadrant,
		Ring:        fm.Ring,
		Moved:       fm.Moved,
	}, nil
}

var delimiter = []byte("---")

func splitFrontmatter(data []byte) (header, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	first, rest, ok := bytes.Cut(data, []byte("\n"))
	if !ok || !bytes.Equal(bytes.TrimSpace(first), delimiter) {
		return nil, nil, fmt.Errorf("missing frontmatter")
	}

	for offset := 0; offset < len(rest); {
		line, _, _ := bytes.Cut(rest[offset:], []byte("\n"))
		if bytes.Equal(bytes.TrimSpace(line), delimiter) {
			end := offset + len(line)
			if end < len(rest) {
				end++
			}
			return rest[:offset], rest[end:], nil
		}
		offset += len(line) + 1
	}
	return nil, nil, fmt.Errorf("unterminated frontmatter")
}

// slugFor turns "tech/rust.md" into "/tech/rust/" and "rust/index.md" into "/rust/".
func slugFor(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	if rel == "index" {
		return "/"
	}
	rel = strings.TrimSuffix(rel, "/index")
	return "/" + rel + "/"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
