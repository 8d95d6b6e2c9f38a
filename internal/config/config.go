package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/bookcart/internal/pricing"
)

const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	Storage     string
	CartFileDir string
	SQLitePath  string
	DatabaseURL string
	CartKey     string

	JWTSecret   []byte
	AccessToken string

	KafkaBrokers   []string
	KafkaTopic     string
	RabbitURL      string
	RabbitExchange string

	Pricing pricing.Policy
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("Notice: .env file not loaded: %v. Using system environment variables", err)
	}

	cfg := &Config{
		ServiceName: EnvDefault("SERVICE_NAME", "bookcart"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		Storage:     strings.ToLower(EnvDefault("CART_STORAGE", StorageFile)),
		CartFileDir: EnvDefault("CART_FILE_DIR", "./data"),
		SQLitePath:  EnvDefault("SQLITE_PATH", "./data/bookcart.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CartKey:     EnvDefault("CART_KEY", "cart"),

		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		AccessToken: os.Getenv("ACCESS_TOKEN"),

		KafkaBrokers:   CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     EnvDefault("KAFKA_TOPIC", "cart_events"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: EnvDefault("RABBIT_EXCHANGE", "domain_events"),

		Pricing: pricing.DefaultPolicy(),
	}

	var err error
	if cfg.Pricing.FreeShippingThreshold, err = EnvDecimalDefault("FREE_SHIPPING_THRESHOLD", cfg.Pricing.FreeShippingThreshold); err != nil {
		return nil, err
	}
	if cfg.Pricing.ShippingFee, err = EnvDecimalDefault("SHIPPING_FEE", cfg.Pricing.ShippingFee); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing required env DATABASE_URL for CART_STORAGE=%s", c.Storage)
		}
	default:
		return fmt.Errorf("unknown CART_STORAGE %q", c.Storage)
	}
	if c.Pricing.FreeShippingThreshold.IsNegative() || c.Pricing.ShippingFee.IsNegative() {
		return fmt.Errorf("shipping threshold and fee must not be negative")
	}
	return nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDecimalDefault(key string, def decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
