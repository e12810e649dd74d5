package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a statistics snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := cache.Statistics()
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}
