package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vitos/eth_take_profit/internal/domain"
	"github.com/vitos/eth_take_profit/internal/usecase"
	"github.com/vitos/eth_take_profit/internal/web"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the take-profit page and JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup("")
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	src, closer, err := newPriceSource(cfg, log, reg)
	if err != nil {
		return err
	}
	defer closer.Close()

	mode, err := domain.ParseTriggerMode(cfg.Ladder.Mode)
	if err != nil {
		return err
	}
	inventory, err := domain.ParseInventoryMode(cfg.Ladder.Inventory)
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	if port == 0 {
		port = 8080
	}

	server := web.NewServer(port,
		usecase.NewTakeProfitService(src, log),
		web.Defaults{
			Asset:        cfg.Asset,
			Ladder:       cfg.Ladder.Spec,
			Mode:         mode,
			Inventory:    inventory,
			PRU:          cfg.Ladder.PRU,
			HeldQuantity: cfg.Ladder.HeldQuantity,
		},
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		log,
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
