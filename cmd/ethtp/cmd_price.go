package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vitos/eth_take_profit/internal/usecase"
)

var priceProbe bool

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Fetch the current price",
	Long: `Fetch the current price through the configured cache and providers.
With --probe every provider is asked directly and its result is listed.`,
	RunE: runPrice,
}

func init() {
	priceCmd.Flags().BoolVar(&priceProbe, "probe", false, "Query each provider directly, bypassing the cache")
}

func runPrice(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup("console")
	if err != nil {
		return err
	}
	defer log.Sync()

	out := cmd.OutOrStdout()
	if priceProbe {
		failed := 0
		for _, src := range newProviders(cfg) {
			price, err := src.GetCurrentPrice(cmd.Context(), cfg.Asset)
			if err != nil {
				failed++
				fmt.Fprintf(out, "%s %-10s %v\n", yellow("FAIL"), src.Name(), err)
				continue
			}
			fmt.Fprintf(out, "%s %-10s %.2f USD\n", green("OK  "), src.Name(), price)
		}
		if failed > 0 {
			return fmt.Errorf("%d provider(s) failed", failed)
		}
		return nil
	}

	src, closer, err := newPriceSource(cfg, log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer closer.Close()

	quote, err := usecase.NewTakeProfitService(src, log).CurrentPrice(cmd.Context(), cfg.Asset)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s from %s at %s\n", cfg.Asset, cyan("%.2f USD", quote.Price), quote.Source, quote.FetchedAt.Format("15:04:05"))
	return nil
}
