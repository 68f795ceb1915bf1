package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show the cached quote for the configured asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup("console")
		if err != nil {
			return err
		}
		defer log.Sync()

		cache, closer, err := newPriceCache(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		q, ok, err := cache.Get(cmd.Context(), cfg.Asset, time.Now())
		if err != nil {
			return fmt.Errorf("failed to read cache: %w", err)
		}
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintf(out, "No fresh quote for %s in %s cache (ttl %s)\n", cfg.Asset, cfg.Cache.Backend, cfg.CacheTTL())
			return nil
		}
		fmt.Fprintf(out, "%s: %.2f USD from %s, fetched %s ago\n", q.Asset, q.Price, q.Source, time.Since(q.FetchedAt).Round(time.Second))
		return nil
	},
}
