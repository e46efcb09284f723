package cmd

import "github.com/spf13/cobra"

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse radar entries in the terminal",
	Long:  "Open the two-pane radar browser: entries filtered by quadrant on the left, details on the right.",
	RunE:  runTUI,
}
