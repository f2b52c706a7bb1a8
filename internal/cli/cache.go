package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/droidhooks/droidguard/internal/config"
	"github.com/droidhooks/droidguard/internal/verdict"
)

var cacheConfigFile string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the review verdict cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached verdicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Cache cleared.")
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		stats, err := c.GetStats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func openCache() (*verdict.Cache, error) {
	cfg, err := config.LoadReviewGuard(cacheConfigFile)
	if err != nil {
		return nil, err
	}
	c, err := verdict.New(cfg.CacheDir, cfg.CacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheConfigFile, "config-file", "", "Path to TOML config file")
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
