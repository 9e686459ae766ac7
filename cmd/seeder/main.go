package main

import (
	"context"
	"flag"
	"log"

	"github.com/alexivanou/weatherscore/internal/config"
	"github.com/alexivanou/weatherscore/internal/logging"
	"github.com/alexivanou/weatherscore/internal/scores"
	"github.com/alexivanou/weatherscore/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	var (
		file  = flag.String("file", "", "Score file to import (.tsv, .txt or .zip); defaults to SEEDER_FILE")
		clear = flag.Bool("clear", false, "Delete all stored scores before importing")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, true)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	path := *file
	if path == "" {
		path = cfg.Seeder.File
	}
	if path == "" {
		logger.Fatal("No input file: pass -file or set SEEDER_FILE")
	}

	ctx := context.Background()
	store, err := scores.OpenWithConfig(ctx, cfg.DB, logger)
	if err != nil {
		logger.Fatal("Failed to open score store", zap.Error(err))
	}
	defer store.Close()

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if *clear {
		if err := store.ClearAll(ctx); err != nil {
			logger.Fatal("Failed to clear scores", zap.Error(err))
		}
	}

	logger.Info("Starting data import...", zap.String("file", path))
	parser := seeder.NewParser(cfg.Seeder)
	res, err := seeder.ImportFile(ctx, parser, path, store, logger)
	if err != nil {
		logger.Fatal("Import failed", zap.Error(err), zap.Int("parsed", res.Parsed))
	}

	count, err := store.Count(ctx)
	if err != nil {
		logger.Fatal("Failed to count scores", zap.Error(err))
	}
	logger.Info("Import completed successfully", zap.Int64("total_scores", count))
}
