package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch all enabled content sources into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		n, errs := newSyncer(cfg, db, logger).Sync(cmd.Context())
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "  [warn] %v\n", e)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d record(s) from %d source(s).\n", n, len(cfg.EnabledSources()))
		return nil
	},
}
