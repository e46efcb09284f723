package cmd

import (
	"fmt"
	"os"

	"github.com/cgrotz/cgrotz.github.io/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagSince   string
	flagRefresh bool
	flagConfig  string
	flagVerbose bool
)

// logger is built once flags are parsed; commands log through it.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "techradar",
	Short: "Tech radar built from tagged site content",
	Long: `techradar classifies tagged articles into radar entries (quadrant, ring, movement)
and renders them as an interactive radar page, a JSON config or a terminal browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(flagVerbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	for _, c := range []*cobra.Command{rootCmd, browseCmd} {
		c.Flags().StringVar(&flagSince, "since", "", "only show entries from the last duration (e.g., 30d, 720h)")
		c.Flags().BoolVar(&flagRefresh, "refresh", false, "force a content sync before launching")
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "techradar %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
