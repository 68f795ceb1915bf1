package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitos/eth_take_profit/internal/config"
	"github.com/vitos/eth_take_profit/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var (
	configPath string
	envPath    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ethtp",
	Short: "ETH take-profit ladder tracker",
	Long: `ethtp compares the current ETH price with a take-profit ladder built from
your purchase price (PRU) and reports which levels are reached and what
selling at those levels would realize.

Ladder format: "trigger:sell,..." e.g. "100:25,150:50,200:25" sells 25% at
+100%, 50% at +150% and 25% at +200%.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "Path to .env file with API keys")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging level")

	rootCmd.AddCommand(statusCmd, priceCmd, serveCmd, cacheCmd)
}

// setup loads configuration and builds the logger shared by every command.
func setup(encoding string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if encoding == "" {
		encoding = cfg.Logging.Encoding
	}

	log, err := logger.NewLogger(cfg.Logging.Level, encoding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
