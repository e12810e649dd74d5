package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Evict every cached entry",
	Long: `Clear evicts every entry in the cache. Entries still referenced by an
open match executor are deferred rather than force-released.

This is gated behind --allow-test-ops because clearing a cache serving
live traffic forces every subsequent lookup to recompile, which on a busy
process can cause a latency spike.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !allowTestOps {
			return fmt.Errorf("clear requires --allow-test-ops")
		}
		cache.Clear()
		cmd.Println("cache cleared")
		return nil
	},
}
