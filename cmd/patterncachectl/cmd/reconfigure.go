package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcflare/patterncache/internal/config"
)

var reconfigureFrom string

var reconfigureCmd = &cobra.Command{
	Use:   "reconfigure",
	Short: "Replace the cache's configuration with a freshly loaded one",
	Long: `Reconfigure builds a replacement cache from --from (or the environment,
if --from is omitted) and swaps it in for the live one. The displaced
cache is retired, not closed outright: its background sweepers keep
running so entries still referenced by an in-flight match drain through
the deferred queue instead of leaking.

This is gated behind --allow-test-ops for the same reason clear is: on a
cache serving live traffic, every pattern compiled against the displaced
configuration still works, but the sudden config change is rarely what
an operator wants outside of a test or a deliberate reload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !allowTestOps {
			return fmt.Errorf("reconfigure requires --allow-test-ops")
		}

		cfg, err := config.Load(reconfigureFrom)
		if err != nil {
			return fmt.Errorf("reconfigure: load config: %w", err)
		}

		if err := cache.Reconfigure(cfg.Cache.ToPatternCacheConfig()); err != nil {
			return fmt.Errorf("reconfigure: %w", err)
		}

		cmd.Println("cache reconfigured")
		return nil
	},
}

func init() {
	reconfigureCmd.Flags().StringVar(&reconfigureFrom, "from", "", "path to the replacement configuration YAML file")
}
