package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stockpulse/pulse-backend/internal/config"
	"github.com/stockpulse/pulse-backend/internal/db"
	"github.com/stockpulse/pulse-backend/internal/external"
	"github.com/stockpulse/pulse-backend/internal/ingest"
	"github.com/stockpulse/pulse-backend/internal/notifications"
	"github.com/stockpulse/pulse-backend/internal/repository"
)

const banner = `
╔══════════════════════════════════════╗
║       StockPulse Ingestor            ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}
	if err := db.Migrate(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
		os.Exit(1)
	}

	barRepo := repository.NewBarRepo(pool)
	avClient := external.NewClient(cfg.AlphaVantageAPIKey, external.Options{})
	notify := notifications.NewSender(cfg.WebhookURL, cfg.ServiceName)

	cycle := ingest.New(avClient, barRepo, notify, ingest.Config{
		Symbols:        cfg.Symbols,
		PacingInterval: cfg.PacingInterval,
		CycleInterval:  cfg.CycleInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Blocks until the shutdown signal; one pass per cycle interval.
	cycle.Run(ctx)

	fmt.Println("Shutdown complete")
}
