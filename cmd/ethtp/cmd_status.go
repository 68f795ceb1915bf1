package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vitos/eth_take_profit/internal/domain"
	"github.com/vitos/eth_take_profit/internal/usecase"
)

var (
	statusPRU       float64
	statusLadder    string
	statusQty       float64
	statusMode      string
	statusInventory string
	statusPrice     float64
	statusJSON      bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Evaluate the take-profit ladder against the current price",
	Example: `  ethtp status --pru 1500 --tp "100:25,150:50,200:25"
  ethtp status --pru 1500 --tp "2:25,2.5:50,3:25" --mode multiplier --qty 4.2
  ethtp status --price 4000 --json`,
	RunE: runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.Float64Var(&statusPRU, "pru", 0, "Purchase reference price in USD (default from config)")
	f.StringVar(&statusLadder, "tp", "", "Ladder as trigger:sell pairs (default from config)")
	f.Float64Var(&statusQty, "qty", 0, "Held quantity (default from config)")
	f.StringVar(&statusMode, "mode", "", "Trigger mode: percent or multiplier")
	f.StringVar(&statusInventory, "inventory", "", "Sell percentages apply to the original or remaining bag")
	f.Float64Var(&statusPrice, "price", 0, "Use this price instead of fetching one")
	f.BoolVar(&statusJSON, "json", false, "Print the report as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup("console")
	if err != nil {
		return err
	}
	defer log.Sync()

	req := usecase.StatusRequest{
		Holding: domain.Holding{
			Asset:          cfg.Asset,
			ReferencePrice: cfg.Ladder.PRU,
			Quantity:       cfg.Ladder.HeldQuantity,
		},
		Ladder: cfg.Ladder.Spec,
	}

	flags := cmd.Flags()
	if flags.Changed("pru") {
		req.ReferencePrice = statusPRU
	}
	if flags.Changed("tp") {
		req.Ladder = statusLadder
	}
	if flags.Changed("qty") {
		req.Quantity = statusQty
	}
	if flags.Changed("price") {
		req.CurrentPrice = &statusPrice
	}

	mode := cfg.Ladder.Mode
	if flags.Changed("mode") {
		mode = statusMode
	}
	if req.Mode, err = domain.ParseTriggerMode(mode); err != nil {
		return err
	}
	inventory := cfg.Ladder.Inventory
	if flags.Changed("inventory") {
		inventory = statusInventory
	}
	if req.Inventory, err = domain.ParseInventoryMode(inventory); err != nil {
		return err
	}

	src, closer, err := newPriceSource(cfg, log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer closer.Close()

	report, err := usecase.NewTakeProfitService(src, log).Status(cmd.Context(), req)
	if err != nil {
		var specErr *domain.MalformedSpecError
		switch {
		case errors.As(err, &specErr) && specErr.Token != "":
			return fmt.Errorf("invalid ladder entry %d %q: %s", specErr.Index, specErr.Token, specErr.Reason)
		case errors.Is(err, domain.ErrPriceUnavailable):
			return fmt.Errorf("ETH price data is unavailable: %w", err)
		}
		return err
	}

	if statusJSON {
		return renderJSON(cmd.OutOrStdout(), report)
	}
	renderText(cmd.OutOrStdout(), report)
	return nil
}
