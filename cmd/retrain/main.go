// Package main runs one retraining pass over every registered bot and
// exits. It is used for bootstrapping model artifacts and for manual
// re-optimization outside the nightly schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/your-org/var-trade-bot/internal/config"
	"github.com/your-org/var-trade-bot/internal/dbwriter"
	"github.com/your-org/var-trade-bot/internal/exchange/tinkoff"
	"github.com/your-org/var-trade-bot/internal/forecast"
	"github.com/your-org/var-trade-bot/internal/search"
	"github.com/your-org/var-trade-bot/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)

	if cfg.Token == "" {
		logger.Fatal("TINKOFF_TOKEN must be set")
	}
	if cfg.Exchange.BaseURL != "" {
		tinkoff.SetBaseURL(cfg.Exchange.BaseURL)
	}

	var writer *dbwriter.Writer
	if cfg.Database.Host != "" {
		writer, err = dbwriter.NewWriter(ctx, cfg.Database, cfg.DBWriter, logger.Zap())
		if err != nil {
			logger.Fatalf("Failed to initialize database writer: %v", err)
		}
		defer writer.Close()
	}

	store := config.NewStore(cfg.RegistryPath)
	bots, err := store.LoadAll()
	if err != nil {
		logger.Fatalf("Failed to load bots: %v", err)
	}

	searchEngine := search.NewEngine(
		tinkoff.NewClient(cfg.Token, cfg.AccountID),
		forecast.NewVAR(),
		store,
		writer,
	)

	logger.Infof("Retraining %d bots", len(bots))
	var wg sync.WaitGroup
	for _, bot := range bots {
		wg.Add(1)
		go func(bot *config.BotConfig) {
			defer wg.Done()
			if err := searchEngine.Retrain(ctx, bot); err != nil {
				logger.Errorf("Retraining failed for bot %s: %v", bot.Name, err)
			}
		}(bot)
	}
	wg.Wait()
	logger.Info("Retraining pass complete.")
}
