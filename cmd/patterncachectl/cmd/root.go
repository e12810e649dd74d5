// Package cmd implements patterncachectl, an administrative CLI for
// inspecting and exercising a pattern cache instance that each invocation
// builds in-process from configuration.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arcflare/patterncache/internal/config"
	"github.com/arcflare/patterncache/internal/logging"
	pc "github.com/arcflare/patterncache/pkg/patterncache"
)

var (
	version string

	cfgFile      string
	allowTestOps bool

	cache  *pc.Cache
	logger *slog.Logger
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "patterncachectl",
	Short: "Inspect and exercise a pattern cache instance",
	Long: `patterncachectl builds a pattern cache from the same configuration an
embedding application would use, and offers commands to compile patterns,
run matches, and print cache statistics against it.

Examples:
  # Print the freshly built cache's statistics as JSON
  patterncachectl stats --config cache.yaml

  # Check a pattern compiles and test it against an input
  patterncachectl compile '^\d+$' --input 12345

  # Force-clear the cache (requires --allow-test-ops)
  patterncachectl clear --allow-test-ops

  # Swap in a new configuration (requires --allow-test-ops)
  patterncachectl reconfigure --from new-cache.yaml --allow-test-ops
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger = logging.New(cfg.Log.ToLoggingConfig())

		cacheCfg := cfg.Cache.ToPatternCacheConfig()
		cache, err = pc.New(cacheCfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cache != nil {
			return cache.Close()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by `patterncachectl version`.
func SetVersion(v string) { version = v }

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a cache configuration YAML file")
	rootCmd.PersistentFlags().BoolVar(&allowTestOps, "allow-test-ops", false, "enable operations that are unsafe against a live, traffic-serving cache")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(reconfigureCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// version needs neither a loaded config nor a live cache.
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println("patterncachectl version " + version)
		return nil
	},
}
