// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-council/internal/cache"
	"github.com/pdiddy/research-council/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the tool result cache",
	Long: `Cache manages the on-disk cache of web search and scrape results.
Search entries expire after 24 hours, scraped pages after 7 days.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts and size of the tool result cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			return err
		}
		stats, err := c.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("entries: %d (%d expired)\n", stats.Entries, stats.Expired)
		fmt.Printf("size:    %d bytes\n", stats.Bytes)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached tool results",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			return err
		}
		removed, err := c.Clear()
		if err != nil {
			return err
		}
		fmt.Printf("removed %d entries\n", removed)
		return nil
	},
}

func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	dir, _ := cmd.Flags().GetString("cache-dir")
	if dir == "" {
		dir = viper.GetString("cache.dir")
	}
	return cache.New(types.CacheConfig{
		Dir:        dir,
		SearchTTL:  viper.GetDuration("cache.search_ttl"),
		ScrapeTTL:  viper.GetDuration("cache.scrape_ttl"),
		MaxEntries: viper.GetInt("cache.max_entries"),
	})
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", "", "cache directory (default data/research_cache)")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
