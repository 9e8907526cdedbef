package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const barsSchema = `
	CREATE TABLE IF NOT EXISTS market_bars (
		symbol   TEXT NOT NULL,
		bar_date DATE NOT NULL,
		open     DOUBLE PRECISION NOT NULL,
		high     DOUBLE PRECISION NOT NULL,
		low      DOUBLE PRECISION NOT NULL,
		close    DOUBLE PRECISION NOT NULL,
		volume   BIGINT NOT NULL,
		PRIMARY KEY (symbol, bar_date)
	)`

// SetupPool creates a pgxpool.Pool for integration tests and makes sure
// the market_bars table exists. Connection details come from env vars or
// sensible defaults.
func SetupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		host := EnvOr("DB_HOST", "localhost")
		port := EnvOr("DB_PORT", "5432")
		name := EnvOr("DB_NAME", "stockpulse")
		user := EnvOr("DB_USER", "postgres")
		pass := EnvOr("DB_PASSWORD", "")
		dsn = "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := pool.Exec(context.Background(), barsSchema); err != nil {
		pool.Close()
		t.Fatalf("ensure schema: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
