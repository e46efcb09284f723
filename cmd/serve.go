package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cgrotz/cgrotz.github.io/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the radar page over HTTP",
	Long: `Serve the radar at / and /radar, its JSON config at /radar.json and a health
check at /healthz. Content is re-synced in the background every refresh interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		if flagAddr != "" {
			cfg.Server.Addr = flagAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		syncer := newSyncer(cfg, db, logger)
		if err := syncer.ensureFresh(ctx, flagRefresh); err != nil {
			logger.Warn("initial sync failed, serving cached content", zap.Error(err))
		}
		go syncer.loop(ctx, cfg.RefreshDuration())

		srv, err := server.New(cfg, db, logger)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "force a content sync before serving")
}

// loop re-syncs every interval until ctx is done.
func (s *Syncer) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			s.Sync(syncCtx)
			cancel()
		}
	}
}
