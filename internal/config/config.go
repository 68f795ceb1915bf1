package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/vitos/eth_take_profit/internal/domain"
	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	Name    string `yaml:"name"` // coingecko, coincap, bybit, bybit-ws
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type Config struct {
	Asset  string `yaml:"asset"`
	Ladder struct {
		Spec         string  `yaml:"spec"`
		Mode         string  `yaml:"mode"`
		Inventory    string  `yaml:"inventory"`
		PRU          float64 `yaml:"pru"`
		HeldQuantity float64 `yaml:"held_quantity"`
	} `yaml:"ladder"`
	PriceFeed struct {
		Providers       []ProviderConfig `yaml:"providers"`
		TimeoutMs       int              `yaml:"timeout_ms"`
		CacheTTLSeconds int              `yaml:"cache_ttl_seconds"`
		RateLimitPerMin int              `yaml:"rate_limit_per_min"`
		Breaker         struct {
			ConsecutiveFailures uint32 `yaml:"consecutive_failures"`
			OpenTimeoutSeconds  int    `yaml:"open_timeout_seconds"`
		} `yaml:"breaker"`
	} `yaml:"price_feed"`
	Cache struct {
		Backend    string `yaml:"backend"` // memory, sqlite, redis
		SQLitePath string `yaml:"sqlite_path"`
		RedisAddr  string `yaml:"redis_addr"`
		RedisDB    int    `yaml:"redis_db"`
		RedisPass  string `yaml:"-"`
	} `yaml:"cache"`
	Logging struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Asset: domain.DefaultAsset}
	cfg.Ladder.Spec = "100:25,150:50,200:25"
	cfg.Ladder.Mode = string(domain.TriggerPercentGain)
	cfg.Ladder.Inventory = string(domain.InventoryOriginal)
	cfg.Ladder.PRU = 1500
	cfg.Ladder.HeldQuantity = domain.DefaultHeldQuantity
	cfg.PriceFeed.Providers = []ProviderConfig{{Name: "coingecko"}, {Name: "coincap"}}
	cfg.PriceFeed.TimeoutMs = 5000
	cfg.PriceFeed.CacheTTLSeconds = 60
	cfg.PriceFeed.RateLimitPerMin = 30
	cfg.PriceFeed.Breaker.ConsecutiveFailures = 3
	cfg.PriceFeed.Breaker.OpenTimeoutSeconds = 60
	cfg.Cache.Backend = "memory"
	cfg.Cache.SQLitePath = "ethtp.db"
	cfg.Cache.RedisAddr = "localhost:6379"
	cfg.Logging.Level = "info"
	cfg.Logging.Encoding = "json"
	cfg.Server.Port = 8080
	return cfg
}

// Load reads path over the defaults. A missing file is not an error.
// Secrets are taken from the environment, after loading envFile if it exists.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			defer f.Close()
			decoder := yaml.NewDecoder(f)
			if err := decoder.Decode(cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	for i := range c.PriceFeed.Providers {
		p := &c.PriceFeed.Providers[i]
		if p.APIKey != "" {
			continue
		}
		switch p.Name {
		case "coingecko":
			p.APIKey = os.Getenv("COINGECKO_API_KEY")
		case "coincap":
			p.APIKey = os.Getenv("COINCAP_API_KEY")
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPass = v
	}
}

func (c *Config) Validate() error {
	if c.Asset == "" {
		return errors.New("config: asset is required")
	}
	if _, err := domain.ParseTriggerMode(c.Ladder.Mode); err != nil {
		return fmt.Errorf("config: ladder.mode: %w", err)
	}
	if _, err := domain.ParseInventoryMode(c.Ladder.Inventory); err != nil {
		return fmt.Errorf("config: ladder.inventory: %w", err)
	}
	if c.Ladder.HeldQuantity < 0 {
		return errors.New("config: ladder.held_quantity must not be negative")
	}
	if len(c.PriceFeed.Providers) == 0 {
		return errors.New("config: at least one price_feed provider is required")
	}
	for _, p := range c.PriceFeed.Providers {
		switch p.Name {
		case "coingecko", "coincap", "bybit", "bybit-ws":
		default:
			return fmt.Errorf("config: unknown price provider %q", p.Name)
		}
	}
	switch c.Cache.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.PriceFeed.TimeoutMs) * time.Millisecond
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.PriceFeed.CacheTTLSeconds) * time.Second
}
