package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockpulse/pulse-backend/internal/api"
	"github.com/stockpulse/pulse-backend/internal/cache"
	"github.com/stockpulse/pulse-backend/internal/config"
	"github.com/stockpulse/pulse-backend/internal/db"
	"github.com/stockpulse/pulse-backend/internal/external"
	"github.com/stockpulse/pulse-backend/internal/predict"
	"github.com/stockpulse/pulse-backend/internal/repository"
)

const banner = `
╔══════════════════════════════════════╗
║       StockPulse API Server          ║
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

	// Cache. A down Redis is not fatal: reads fall through to compute.
	cacheClient := cache.New(cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer cacheClient.Close()

	// Services
	barRepo := repository.NewBarRepo(pool)
	avClient := external.NewClient(cfg.AlphaVantageAPIKey, external.Options{})
	predictor := predict.NewService(barRepo, cacheClient, avClient, predict.Config{
		Symbols:       cfg.Symbols,
		PredictionTTL: cfg.PredictionTTL,
		SentimentTTL:  cfg.SentimentTTL,
	})

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(pool, cacheClient, predictor, cfg.APIPort, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
