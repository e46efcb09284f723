package cmd

import (
	"fmt"
	"time"

	"github.com/cgrotz/cgrotz.github.io/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, db, err := openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	// Refresh if needed, logging to stderr before the alt screen takes over.
	if err := newSyncer(cfg, db, logger).ensureFresh(cmd.Context(), flagRefresh); err != nil {
		logger.Warn("sync failed, showing cached content", zap.Error(err))
	}

	var since time.Time
	if flagSince != "" {
		d, err := parseSince(flagSince)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		since = time.Now().Add(-d)
	}

	// Source warnings would draw over the TUI once it is running.
	quiet := newSyncer(cfg, db, zap.NewNop())
	return tui.Run(tui.RunOpts{
		Cfg:     cfg,
		DB:      db,
		Since:   since,
		Refresh: quiet.Sync,
	})
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
