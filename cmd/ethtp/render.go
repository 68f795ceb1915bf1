package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/vitos/eth_take_profit/internal/domain"
)

var (
	green  = color.New(color.FgGreen, color.Bold).SprintfFunc()
	yellow = color.New(color.FgYellow, color.Bold).SprintfFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintfFunc()
	orange = color.New(color.FgHiYellow).SprintfFunc()
)

func renderText(w io.Writer, r *domain.StatusReport) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Take-profit levels:")
	for _, l := range r.Levels {
		status := yellow("pending (%+.2f%%)", l.DistancePct)
		if l.Reached {
			status = green("reached")
		}
		fmt.Fprintf(w, " - %s: %+g%% -> %.2f USD | sell %g%% (%s)\n", orange(l.Name()), l.GainPct, l.TargetPrice, l.SellPct, status)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Current %s price: %s", r.Asset, cyan("%.2f USD", r.CurrentPrice))
	if r.PriceSource != "" {
		fmt.Fprintf(w, " (%s)", r.PriceSource)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "PRU: %.2f USD, held: %g\n", r.ReferencePrice, r.HeldQuantity)
	fmt.Fprintf(w, "Realized at reached levels: %.4f for %.2f USD (%s bag)\n", r.RealizedQuantity, r.RealizedValue, r.Inventory)
	fmt.Fprintln(w, "========================================")
}

func renderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
