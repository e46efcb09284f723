package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/cgrotz/cgrotz.github.io/internal/radar"
	"github.com/spf13/cobra"
)

var flagStrict bool

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "List records whose radar tags fell back to a default",
	Long: `A missing or unknown quadrant tag places the entry in Languages and a missing
or unknown ring tag places it in Adopt, indistinguishable from an explicit tag.
lint lists those records so the tags can be fixed at the source.`,
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

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tQUADRANT\tRING\tMOVED")
		found := 0
		for _, r := range records {
			d := radar.Inspect(r)
			if !d.Defaulted() && !d.MovedUnknown {
				continue
			}
			found++
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Slug,
				mark(r.Quadrant, d.QuadrantDefault), mark(r.Ring, d.RingDefault), mark(r.Moved, d.MovedUnknown))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d record(s) use a default tag.\n", found, len(records))
		if flagStrict && found > 0 {
			return fmt.Errorf("%d record(s) with defaulted tags", found)
		}
		return nil
	},
}

func init() {
	lintCmd.Flags().BoolVar(&flagStrict, "strict", false, "exit non-zero when any record is flagged")
	lintCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "force a content sync before linting")
}

// mark shows a tag value, flagging the ones that did not match a table.
func mark(value string, defaulted bool) string {
	if value == "" {
		value = "(none)"
	}
	if defaulted {
		return value + " *"
	}
	return value
}
