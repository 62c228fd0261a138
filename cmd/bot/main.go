// Package main is the entry point of the VAR forecast trading bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/var-trade-bot/internal/alert"
	"github.com/your-org/var-trade-bot/internal/config"
	"github.com/your-org/var-trade-bot/internal/dbwriter"
	"github.com/your-org/var-trade-bot/internal/engine"
	"github.com/your-org/var-trade-bot/internal/exchange/tinkoff"
	"github.com/your-org/var-trade-bot/internal/forecast"
	"github.com/your-org/var-trade-bot/internal/scheduler"
	"github.com/your-org/var-trade-bot/internal/search"
	"github.com/your-org/var-trade-bot/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.SetGlobalLogLevel(cfg.LogLevel)
	logger.Info("VAR trade bot starting...")
	logger.Infof("Loaded configuration from: %s", *configPath)

	if cfg.Token == "" || cfg.AccountID == "" {
		logger.Fatal("TINKOFF_TOKEN and TINKOFF_ACCOUNT_ID must be set")
	}
	if cfg.Exchange.BaseURL != "" {
		tinkoff.SetBaseURL(cfg.Exchange.BaseURL)
	}

	// --- TimescaleDB writer (optional) ---
	var writer *dbwriter.Writer
	if cfg.Database.Host != "" {
		writer, err = dbwriter.NewWriter(ctx, cfg.Database, cfg.DBWriter, logger.Zap())
		if err != nil {
			logger.Fatalf("Failed to initialize database writer: %v", err)
		}
		defer writer.Close()
		logger.Info("Database writer initialized successfully.")
	}

	store := config.NewStore(cfg.RegistryPath)
	client := tinkoff.NewClient(cfg.Token, cfg.AccountID)
	forecaster := forecast.NewVAR()
	notifier := alert.NewLogNotifier()

	tradingEngine := engine.New(client, forecaster, store, writer, notifier,
		cfg.Exchange.CommissionRate,
		time.Duration(cfg.Schedule.SafetyMarginSeconds)*time.Second)
	searchEngine := search.NewEngine(client, forecaster, store, writer)

	// --- Graceful shutdown ---
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Infof("Received signal %v, shutting down...", sig)
		cancel()
	}()

	s := scheduler.New(store, tradingEngine, searchEngine, cfg.Schedule)
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Scheduler stopped: %v", err)
	}
	logger.Info("VAR trade bot stopped.")
}
