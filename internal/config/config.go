package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	AlphaVantageAPIKey string
	WebhookURL         string
	ServiceName        string
	APIKey             string
	CORSAllowOrigin    string

	// Tracked symbols, shared by ingestion and query paths. Must be
	// identical on both sides or the stores drift out of sync.
	Symbols []string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// API
	APIPort int

	// Ingestion timing
	PacingInterval time.Duration
	CycleInterval  time.Duration

	// Cache TTLs
	PredictionTTL time.Duration
	SentimentTTL  time.Duration
}

const defaultSymbols = "AAPL,GOOGL,MSFT,TSLA,AMZN"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		AlphaVantageAPIKey: envStr("ALPHA_VANTAGE_API_KEY", ""),
		WebhookURL:         envStr("WEBHOOK_URL", ""),
		ServiceName:        envStr("SERVICE_NAME", "StockPulse"),
		APIKey:             envStr("API_KEY", ""),
		CORSAllowOrigin:    envStr("CORS_ALLOW_ORIGIN", "*"),

		Symbols: splitSymbols(envStr("SYMBOLS", defaultSymbols)),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "stockpulse"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// Cache
		RedisAddr:     envStr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envStr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		// API
		APIPort: envInt("API_PORT", 3001),

		// Timing. The 15s pacing sleep between symbols is an external
		// rate-limit courtesy (5 calls/min on the free tier).
		PacingInterval: time.Duration(envInt("PACING_INTERVAL_SECONDS", 15)) * time.Second,
		CycleInterval:  time.Duration(envInt("CYCLE_INTERVAL_HOURS", 24)) * time.Hour,

		PredictionTTL: time.Duration(envInt("PREDICTION_TTL_SECONDS", 60)) * time.Second,
		SentimentTTL:  time.Duration(envInt("SENTIMENT_TTL_SECONDS", 3600)) * time.Second,
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.AlphaVantageAPIKey == "" || c.AlphaVantageAPIKey == "YOUR_API_KEY" {
		errs = append(errs, "ALPHA_VANTAGE_API_KEY is required")
	}
	if len(c.Symbols) == 0 {
		errs = append(errs, "SYMBOLS must list at least one ticker")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set, REST API has no authentication")
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set, ingestion alerts will only go to the console")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== StockPulse Configuration ===")
	fmt.Printf("Tracked symbols: %s\n", strings.Join(c.Symbols, ", "))
	fmt.Printf("Database: %s:%d/%s\n", c.DBHost, c.DBPort, c.DBName)
	fmt.Printf("Redis: %s (db %d)\n", c.RedisAddr, c.RedisDB)
	fmt.Println("--------------------------------------")
	fmt.Println("Ingestion:")
	fmt.Printf("  Pacing between symbols: %s\n", c.PacingInterval)
	fmt.Printf("  Cycle interval: %s\n", c.CycleInterval)
	fmt.Println("Caching:")
	fmt.Printf("  Prediction TTL: %s\n", c.PredictionTTL)
	fmt.Printf("  Sentiment TTL: %s\n", c.SentimentTTL)
	fmt.Printf("Alpha Vantage API: %s\n", boolLabel(c.AlphaVantageAPIKey != "", "configured", "not set"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Tracked reports whether symbol is in the configured set.
// Matching is case-insensitive; symbols are stored uppercase.
func (c *Config) Tracked(symbol string) bool {
	up := strings.ToUpper(symbol)
	for _, s := range c.Symbols {
		if s == up {
			return true
		}
	}
	return false
}

func splitSymbols(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
