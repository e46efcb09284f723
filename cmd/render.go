package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cgrotz/cgrotz.github.io/internal/config"
	"github.com/cgrotz/cgrotz.github.io/internal/content"
	"github.com/cgrotz/cgrotz.github.io/internal/page"
	"github.com/cgrotz/cgrotz.github.io/internal/radar"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagOut string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the radar page and its JSON config for static hosting",
	Long: `Build the radar from the cached content and write index.html and radar.json
into the output directory. The cache is synced first when it is stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := newSyncer(cfg, db, logger).ensureFresh(cmd.Context(), flagRefresh); err != nil {
			return err
		}
		records, err := loadRecords(cfg, db)
		if err != nil {
			return err
		}

		v, err := writeRadar(flagOut, cfg, records)
		if err != nil {
			return err
		}
		logger.Info("rendered radar", zap.String("out", flagOut), zap.Int("entries", len(v.Entries)))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s\n", len(v.Entries), flagOut)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&flagOut, "out", "o", "public/radar", "output directory")
	renderCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "force a content sync before rendering")
}

// writeRadar builds the visualization and writes index.html and radar.json to dir.
func writeRadar(dir string, cfg *config.Config, records []content.Record) (radar.Visualization, error) {
	v := radar.Build(cfg.Radar, records)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return v, fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return v, fmt.Errorf("creating page: %w", err)
	}
	if err := page.Render(f, page.New(cfg.Site, v)); err != nil {
		f.Close()
		return v, err
	}
	if err := f.Close(); err != nil {
		return v, fmt.Errorf("writing page: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return v, fmt.Errorf("encoding radar config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "radar.json"), append(data, '\n'), 0o644); err != nil {
		return v, fmt.Errorf("writing radar config: %w", err)
	}
	return v, nil
}
