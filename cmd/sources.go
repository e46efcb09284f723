package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cgrotz/cgrotz.github.io/internal/cache"
	"github.com/cgrotz/cgrotz.github.io/internal/config"
	"github.com/cgrotz/cgrotz.github.io/internal/content"
	"go.uber.org/zap"
)

// buildSources turns the enabled config sources into content sources.
// Relative markdown paths resolve against the config file's directory.
func buildSources(cfg *config.Config, configPath string, log *zap.Logger) []content.Source {
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	base := filepath.Dir(configPath)

	var out []content.Source
	for _, s := range cfg.EnabledSources() {
		switch s.Type {
		case "markdown":
			root := s.Path
			if !filepath.IsAbs(root) {
				root = filepath.Join(base, root)
			}
			out = append(out, content.NewMarkdownSource(s.Name, root, log))
		default:
			out = append(out, content.NewFeedSource(s.Name, s.URL))
		}
	}
	return out
}

// Syncer refreshes the cache from the configured sources.
type Syncer struct {
	cfg     *config.Config
	db      *cache.Cache
	sources []content.Source
	log     *zap.Logger
}

func newSyncer(cfg *config.Config, db *cache.Cache, log *zap.Logger) *Syncer {
	return &Syncer{
		cfg:     cfg,
		db:      db,
		sources: buildSources(cfg, flagConfig, log),
		log:     log,
	}
}

// Sync fetches every source, stores the records and prunes expired ones.
// A complete source that fetched successfully replaces its cached rows, so
// deleted or renamed posts leave the radar at once. Window sources such as feeds
// are upserted and age out by retention. Per-source failures are returned
// alongside the count; they never abort the sync.
func (s *Syncer) Sync(ctx context.Context) (int, []error) {
	result := content.FetchAll(ctx, s.sources)
	errs := result.Errors
	for _, e := range errs {
		s.log.Warn("source failed", zap.Error(e))
	}

	stored := 0
	for _, b := range result.Batches {
		if b.Complete {
			removed, err := s.db.ReplaceSource(b.Source, b.Records)
			if err != nil {
				errs = append(errs, fmt.Errorf("caching records of %s: %w", b.Source, err))
				continue
			}
			if removed > 0 {
				s.log.Info("removed records no longer in source",
					zap.String("source", b.Source), zap.Int64("count", removed))
			}
		} else if err := s.db.UpsertRecords(b.Records); err != nil {
			errs = append(errs, fmt.Errorf("caching records of %s: %w", b.Source, err))
			continue
		}
		stored += len(b.Records)
	}
	if err := s.db.SetLastRefresh(); err != nil {
		s.log.Warn("recording refresh time", zap.Error(err))
	}

	// Auto-prune old records after refresh
	if n, err := s.db.Prune(s.cfg.RetentionDuration(), s.completeSources()...); err != nil {
		s.log.Warn("pruning", zap.Error(err))
	} else if n > 0 {
		s.log.Info("pruned expired records", zap.Int64("count", n))
	}

	s.log.Info("synced",
		zap.Int("records", stored),
		zap.Int("sources", len(s.sources)),
		zap.Int("failed", len(errs)))
	return stored, errs
}

func (s *Syncer) completeSources() []string {
	var names []string
	for _, src := range s.sources {
		if content.IsComplete(src) {
			names = append(names, src.Name())
		}
	}
	return names
}

// ensureFresh syncs when forced or when the last sync is older than the refresh interval.
func (s *Syncer) ensureFresh(ctx context.Context, force bool) error {
	if !force && !s.db.NeedsRefresh(s.cfg.RefreshDuration()) {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, errs := s.Sync(ctx); len(errs) > 0 && len(errs) >= len(s.sources) {
		return fmt.Errorf("syncing content: %w", errs[0])
	}
	return nil
}

// openCache loads the config and opens the record cache.
func openCache() (*config.Config, *cache.Cache, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := cache.Open(config.CachePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	return cfg, db, nil
}

// loadRecords returns the cached records of the configured content type, newest first.
func loadRecords(cfg *config.Config, db *cache.Cache) ([]content.Record, error) {
	contentType := cfg.GetContentType()
	records, err := db.GetRecords(cache.QueryOpts{Type: contentType})
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	return content.Select(records, contentType), nil
}
